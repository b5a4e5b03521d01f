package engine

// Phase is the macro game phase. Transitions are one-way:
// setup → playing → final → scoring.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseFinal   Phase = "final"
	PhaseScoring Phase = "scoring"
)

// SubPhase is the micro phase within a turn. "ai_thinking" is semantically
// identical to "idle" but tags that the mover is a bot, so the adapter knows
// to schedule a decision instead of waiting for input.
type SubPhase string

const (
	SubPhaseIdle          SubPhase = "idle"
	SubPhaseAIThinking    SubPhase = "ai_thinking"
	SubPhaseChoosing      SubPhase = "choosing"
	SubPhaseSelecting     SubPhase = "selecting"
	SubPhaseAwaiting      SubPhase = "awaiting_action"
	SubPhaseDeclaringRank SubPhase = "declaring_rank"
	SubPhaseTossQueue     SubPhase = "toss_queue_active"
)

// ActionPhase tracks how far a pending card has progressed.
type ActionPhase string

const (
	ActionPhaseChoosing  ActionPhase = "choosing-action"
	ActionPhaseTargeting ActionPhase = "selecting-target"
	ActionPhaseDeclaring ActionPhase = "declaring-rank"
)

// MaxHistory bounds the recent-action log kept on the state.
const MaxHistory = 32

// PlayerState holds one player's seat.
type PlayerState struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	IsBot              bool   `json:"isBot"`
	Hand               []Card `json:"hand"`
	KnownCardPositions []int  `json:"knownCardPositions"`
	SetupPeeksUsed     []int  `json:"setupPeeksUsed,omitempty"`
	SetupReady         bool   `json:"setupReady,omitempty"`
	HasCalledVinto     bool   `json:"hasCalledVinto,omitempty"`
	InCoalition        bool   `json:"inCoalition,omitempty"`
}

// KnowsPosition reports whether the player has seen their own card at pos.
func (p *PlayerState) KnowsPosition(pos int) bool {
	for _, k := range p.KnownCardPositions {
		if k == pos {
			return true
		}
	}
	return false
}

// markKnown records pos in the player's known-own set (idempotent).
func (p *PlayerState) markKnown(pos int) {
	if !p.KnowsPosition(pos) {
		p.KnownCardPositions = append(p.KnownCardPositions, pos)
	}
}

// unmarkKnown drops knowledge of pos without shifting (the card at pos was
// replaced, not removed).
func (p *PlayerState) unmarkKnown(pos int) {
	out := p.KnownCardPositions[:0]
	for _, k := range p.KnownCardPositions {
		if k != pos {
			out = append(out, k)
		}
	}
	p.KnownCardPositions = out
}

// forgetPosition drops knowledge of pos and shifts knowledge of higher
// positions down one, matching a card removal at pos.
func (p *PlayerState) forgetPosition(pos int) {
	out := p.KnownCardPositions[:0]
	for _, k := range p.KnownCardPositions {
		switch {
		case k == pos:
		case k > pos:
			out = append(out, k-1)
		default:
			out = append(out, k)
		}
	}
	p.KnownCardPositions = out
}

// TargetSelection is one accumulated target of a pending card action.
// Card is set only when the action revealed the card to the actor (peeks).
type TargetSelection struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
	Card     *Card  `json:"card,omitempty"`
}

// PendingAction exists only while a turn's drawn/taken card (or a queued
// toss-in action card) is being processed.
//
// FromQueue marks a card dequeued from a toss-in chain: the card itself is
// already on the discard pile, so resolution must not discard it again.
// ResumeQueue/ResumeOriginalIndex carry the not-yet-executed remainder of
// that chain so the toss-in window can be reopened after this action
// resolves, keeping the two sub-state aggregates mutually exclusive.
type PendingAction struct {
	Card                Card              `json:"card"`
	PlayerID            string            `json:"playerId"`
	ActionPhase         ActionPhase       `json:"actionPhase"`
	TargetKind          ActionKind        `json:"targetKind,omitempty"`
	Targets             []TargetSelection `json:"targets,omitempty"`
	KingCard            *TargetSelection  `json:"kingCard,omitempty"`
	FromDiscard         bool              `json:"fromDiscard,omitempty"`
	CanUseAction        bool              `json:"canUseAction,omitempty"`
	FromQueue           bool              `json:"fromQueue,omitempty"`
	ResumeQueue         []QueuedAction    `json:"resumeQueue,omitempty"`
	ResumeOriginalIndex int               `json:"resumeOriginalIndex,omitempty"`
}

// QueuedAction is an action card tossed in during a toss-in window whose
// effect still has to be played. The card itself already sits on the discard
// pile; the entry records identity and owner for later execution.
type QueuedAction struct {
	Card     Card   `json:"card"`
	PlayerID string `json:"playerId"`
}

// ActiveTossIn exists only during a toss-in window.
type ActiveTossIn struct {
	Rank                Rank           `json:"rank"`
	InitiatorID         string         `json:"initiatorId"`
	OriginalPlayerIndex int            `json:"originalPlayerIndex"`
	Participants        []string       `json:"participants"`
	QueuedActions       []QueuedAction `json:"queuedActions"`
	WaitingForInput     bool           `json:"waitingForInput"`
	ReadyPlayers        []string       `json:"readyPlayers"`
}

func (t *ActiveTossIn) IsReady(playerID string) bool {
	for _, id := range t.ReadyPlayers {
		if id == playerID {
			return true
		}
	}
	return false
}

// Difficulty tunes bot randomness and risk tolerance.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// HistoryEntry is a public, fully observable summary of one applied action.
// Bots feed their memories from these entries; hidden information (peeked
// card values) never appears here.
type HistoryEntry struct {
	Seq            int    `json:"seq"`
	Kind           string `json:"kind"`
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	Position       int    `json:"position,omitempty"`
	Position2      int    `json:"position2,omitempty"`
	TargetPlayer2  string `json:"targetPlayer2,omitempty"`
	Rank           Rank   `json:"rank,omitempty"`
	Card           *Card  `json:"card,omitempty"`
}

// GameState is the complete, self-contained state of a Vinto game. It is a
// value type: Reduce clones it before every transition and no component
// outside the engine ever produces one.
type GameState struct {
	Phase              Phase          `json:"phase"`
	SubPhase           SubPhase       `json:"subPhase"`
	Players            []PlayerState  `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	TurnCount          int            `json:"turnCount"`
	RoundNumber        int            `json:"roundNumber"`
	DrawPile           Pile           `json:"drawPile"`
	DiscardPile        Pile           `json:"discardPile"`
	Pending            *PendingAction `json:"pendingAction,omitempty"`
	TossIn             *ActiveTossIn  `json:"activeTossIn,omitempty"`
	VintoCallerID      string         `json:"vintoCallerId,omitempty"`
	CoalitionLeaderID  string         `json:"coalitionLeaderId,omitempty"`
	FinalTurnTriggered bool           `json:"finalTurnTriggered"`
	Difficulty         Difficulty     `json:"difficulty"`
	History            []HistoryEntry `json:"history"`
	RNG                uint64         `json:"rng"`
	ActionSeq          int            `json:"actionSeq"`
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, serialized with the state so replays reproduce
// every shuffle and penalty draw.
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// NumPlayers returns the seat count.
func (g *GameState) NumPlayers() int { return len(g.Players) }

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *PlayerState {
	return &g.Players[g.CurrentPlayerIndex]
}

// PlayerByID returns the seat with the given id, or nil.
func (g *GameState) PlayerByID(id string) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// playerIndex returns the seat index for id, or -1.
func (g *GameState) playerIndex(id string) int {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether the game has reached scoring.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseScoring }

// IsVintoCalled reports whether someone has called Vinto.
func (g *GameState) IsVintoCalled() bool { return g.VintoCallerID != "" }

// ActingPlayerID returns the id of the player who must act next: the
// pending-action owner if one exists, otherwise the current player. During
// an open toss-in window every non-ready player may act, so the current
// player is returned only as the default.
func (g *GameState) ActingPlayerID() string {
	if g.Pending != nil {
		return g.Pending.PlayerID
	}
	return g.Players[g.CurrentPlayerIndex].ID
}

// idleSubPhaseFor returns idle or ai_thinking depending on the seat.
func (g *GameState) idleSubPhaseFor(idx int) SubPhase {
	if g.Players[idx].IsBot {
		return SubPhaseAIThinking
	}
	return SubPhaseIdle
}

// ---------------------------------------------------------------------------
// Clone — deep value copy. Reduce works on a clone so the caller's state is
// never mutated, valid or not.
// ---------------------------------------------------------------------------

// Clone returns a deep copy of the game state.
func (g GameState) Clone() GameState {
	out := g

	out.Players = make([]PlayerState, len(g.Players))
	for i, p := range g.Players {
		np := p
		np.Hand = append([]Card(nil), p.Hand...)
		np.KnownCardPositions = append([]int(nil), p.KnownCardPositions...)
		np.SetupPeeksUsed = append([]int(nil), p.SetupPeeksUsed...)
		out.Players[i] = np
	}

	out.DrawPile = g.DrawPile.clone()
	out.DiscardPile = g.DiscardPile.clone()

	if g.Pending != nil {
		np := *g.Pending
		np.Targets = append([]TargetSelection(nil), g.Pending.Targets...)
		for i, t := range np.Targets {
			if t.Card != nil {
				c := *t.Card
				np.Targets[i].Card = &c
			}
		}
		if g.Pending.KingCard != nil {
			kc := *g.Pending.KingCard
			if kc.Card != nil {
				c := *kc.Card
				kc.Card = &c
			}
			np.KingCard = &kc
		}
		np.ResumeQueue = append([]QueuedAction(nil), g.Pending.ResumeQueue...)
		out.Pending = &np
	}

	if g.TossIn != nil {
		nt := *g.TossIn
		nt.Participants = append([]string(nil), g.TossIn.Participants...)
		nt.QueuedActions = append([]QueuedAction(nil), g.TossIn.QueuedActions...)
		nt.ReadyPlayers = append([]string(nil), g.TossIn.ReadyPlayers...)
		out.TossIn = &nt
	}

	out.History = append([]HistoryEntry(nil), g.History...)

	return out
}

// recordHistory appends a bounded public summary of an applied action.
func (g *GameState) recordHistory(e HistoryEntry) {
	g.ActionSeq++
	e.Seq = g.ActionSeq
	g.History = append(g.History, e)
	if len(g.History) > MaxHistory {
		g.History = g.History[len(g.History)-MaxHistory:]
	}
}
