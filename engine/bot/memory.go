// Package bot is the decision layer for computer players: per-bot knowledge
// tracking, a difficulty-tuned decision service, and the worst-case round
// solver gating Vinto calls. Everything here is a pure function of
// (state, memory); the package never mutates engine state, it only proposes
// actions for the adapter to dispatch.
package bot

import (
	"github.com/vintolabs/vinto/engine"
)

// Observation is one remembered opponent card with a confidence weight.
type Observation struct {
	Card       engine.Card `json:"card"`
	Confidence float64     `json:"confidence"`
}

// Memory is a bot's view of opponent hands, keyed opponent id → hand
// position → observation. It grows as the bot's actions reveal cards and is
// never pruned within a game, though positions shift when public events
// move cards underneath it.
type Memory struct {
	PlayerID  string                         `json:"playerId"`
	Opponents map[string]map[int]Observation `json:"opponents"`
	lastSeq   int
}

// NewMemory returns an empty memory for the given bot.
func NewMemory(playerID string) *Memory {
	return &Memory{
		PlayerID:  playerID,
		Opponents: make(map[string]map[int]Observation),
	}
}

// Remember records an observed opponent card.
func (m *Memory) Remember(opponentID string, pos int, card engine.Card, confidence float64) {
	if opponentID == m.PlayerID {
		return
	}
	if m.Opponents[opponentID] == nil {
		m.Opponents[opponentID] = make(map[int]Observation)
	}
	m.Opponents[opponentID][pos] = Observation{Card: card, Confidence: confidence}
}

// Known returns the remembered observations for one opponent.
func (m *Memory) Known(opponentID string) map[int]Observation {
	return m.Opponents[opponentID]
}

// AbsorbPeek pulls the revealed card out of the bot's own pending peek.
// Called by the adapter when this bot's 9/10 peek has its target selected.
func (m *Memory) AbsorbPeek(p *engine.PendingAction) {
	if p == nil || p.PlayerID != m.PlayerID {
		return
	}
	for _, t := range p.Targets {
		if t.Card != nil && t.PlayerID != m.PlayerID {
			m.Remember(t.PlayerID, t.Position, *t.Card, 1.0)
		}
	}
}

// ObserveHistory consumes the public action log, keeping position-keyed
// observations aligned with the cards they describe. Entries already seen
// (by sequence number) are skipped, so the method is safe to call with the
// full bounded history after every transition.
func (m *Memory) ObserveHistory(g *engine.GameState) {
	for _, e := range g.History {
		if e.Seq <= m.lastSeq {
			continue
		}
		m.lastSeq = e.Seq
		m.observe(e)
	}
}

func (m *Memory) observe(e engine.HistoryEntry) {
	switch e.Kind {
	case "toss-in":
		// A card left e.PlayerID's hand at e.Position: drop the observation
		// there and shift the ones above it down.
		obs := m.Opponents[e.PlayerID]
		if obs == nil {
			return
		}
		next := make(map[int]Observation, len(obs))
		for pos, o := range obs {
			switch {
			case pos == e.Position:
			case pos > e.Position:
				next[pos-1] = o
			default:
				next[pos] = o
			}
		}
		m.Opponents[e.PlayerID] = next

	case "swap-card", "swap-card-penalty":
		// The player put their freshly drawn (hidden) card at e.Position.
		if obs := m.Opponents[e.PlayerID]; obs != nil {
			delete(obs, e.Position)
		}

	case "swap-cards", "queen-swap":
		// Cards exchanged between two seats: knowledge travels with them.
		a, aok := m.lookup(e.TargetPlayerID, e.Position)
		b, bok := m.lookup(e.TargetPlayer2, e.Position2)
		m.clear(e.TargetPlayerID, e.Position)
		m.clear(e.TargetPlayer2, e.Position2)
		if aok {
			m.Remember(e.TargetPlayer2, e.Position2, a.Card, a.Confidence)
		}
		if bok {
			m.Remember(e.TargetPlayerID, e.Position, b.Card, b.Confidence)
		}
	}
}

func (m *Memory) lookup(playerID string, pos int) (Observation, bool) {
	if obs := m.Opponents[playerID]; obs != nil {
		o, ok := obs[pos]
		return o, ok
	}
	return Observation{}, false
}

func (m *Memory) clear(playerID string, pos int) {
	if obs := m.Opponents[playerID]; obs != nil {
		delete(obs, pos)
	}
}

// Coverage returns known opponent cards / total opponent cards in [0, 1].
func (m *Memory) Coverage(g *engine.GameState) float64 {
	total, known := 0, 0
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == m.PlayerID {
			continue
		}
		total += len(p.Hand)
		for pos := range m.Opponents[p.ID] {
			if pos < len(p.Hand) {
				known++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(known) / float64(total)
}

// Profiles converts the memory into the solver's opponent view.
func (m *Memory) Profiles(g *engine.GameState) []OpponentProfile {
	out := make([]OpponentProfile, 0, len(g.Players)-1)
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == m.PlayerID {
			continue
		}
		prof := OpponentProfile{
			PlayerID: p.ID,
			HandSize: len(p.Hand),
			Known:    make(map[int]engine.Card),
		}
		for pos, o := range m.Opponents[p.ID] {
			if pos < len(p.Hand) {
				prof.Known[pos] = o.Card
			}
		}
		out = append(out, prof)
	}
	return out
}
