package bot

import (
	"math/rand/v2"

	"github.com/vintolabs/vinto/engine"
)

// TurnPlan is the decision the bot committed to when it opened its turn.
// It is threaded explicitly through the turn's remaining steps and replayed
// verbatim, so difficulty randomness rolled at plan time cannot produce a
// contradictory mid-turn choice.
type TurnPlan struct {
	TurnCount    int
	TakeDiscard  bool
	UseAction    bool
	SwapPosition int // -1: no swap
	DeclareRank  engine.Rank
}

// Context bundles everything one decision needs: the full state, the acting
// bot's seat, its memory, a deterministic RNG, and the cached plan for the
// current turn. The service holds no mutable fields of its own.
type Context struct {
	State    *engine.GameState
	PlayerID string
	Memory   *Memory
	Rand     *rand.Rand
	Plan     *TurnPlan
}

func (c *Context) self() *engine.PlayerState { return c.State.PlayerByID(c.PlayerID) }

// NewRand builds the per-decision RNG from the game seed material so bot
// play is reproducible from (seed, actions).
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Service turns a decision context into concrete engine actions.
type Service struct {
	Difficulty engine.Difficulty
}

// New returns a decision service for the given difficulty.
func New(d engine.Difficulty) Service {
	if d == "" {
		d = engine.DifficultyModerate
	}
	return Service{Difficulty: d}
}

// Decide returns the bot's next action for the current state, or nil when
// the bot owes nothing. The returned plan must be threaded back in on the
// next call for the same turn.
func (s Service) Decide(ctx *Context) (engine.Action, *TurnPlan) {
	g := ctx.State

	switch {
	case g.Phase == engine.PhaseSetup:
		return s.decideSetup(ctx), ctx.Plan

	case g.Phase == engine.PhaseScoring:
		return nil, nil

	case g.Pending != nil && g.Pending.PlayerID == ctx.PlayerID:
		return s.decidePending(ctx), ctx.Plan

	case g.TossIn != nil && g.TossIn.WaitingForInput:
		return s.decideTossIn(ctx), ctx.Plan

	case g.Pending == nil && g.TossIn == nil && g.CurrentPlayer().ID == ctx.PlayerID:
		if g.SubPhase != engine.SubPhaseAIThinking && g.SubPhase != engine.SubPhaseIdle {
			return nil, ctx.Plan
		}
		return s.decideTurnOpen(ctx)
	}
	return nil, ctx.Plan
}

func (s Service) decideSetup(ctx *Context) engine.Action {
	me := ctx.self()
	if me.SetupReady {
		return nil
	}
	if n := len(me.SetupPeeksUsed); n < engine.SetupPeekLimit && n < len(me.Hand) {
		return engine.PeekSetupCard{PlayerID: ctx.PlayerID, Position: n}
	}
	return engine.FinishSetup{PlayerID: ctx.PlayerID}
}

// decideTurnOpen rolls the whole turn plan and returns its first action.
func (s Service) decideTurnOpen(ctx *Context) (engine.Action, *TurnPlan) {
	g := ctx.State

	// Calling Vinto was the whole turn; hand play to the next seat.
	if g.VintoCallerID == ctx.PlayerID {
		return engine.AdvanceTurn{PlayerID: ctx.PlayerID}, nil
	}
	if s.shouldCallVinto(ctx) {
		return engine.CallVinto{PlayerID: ctx.PlayerID}, nil
	}

	plan := &TurnPlan{TurnCount: g.TurnCount, SwapPosition: -1}

	if top, okTop := g.DiscardPile.PeekTop(); okTop && s.wantsDiscardTop(ctx, top) {
		plan.TakeDiscard = true
		plan.SwapPosition = s.worstKnownPosition(ctx)
		if pos := plan.SwapPosition; pos >= 0 && ctx.self().KnowsPosition(pos) {
			// Commit to the declaration now; the displaced card's action
			// rides along when the rank has one.
			plan.DeclareRank = ctx.self().Hand[pos].Rank
			plan.UseAction = plan.DeclareRank.HasAction()
		}
		ctx.Plan = plan
		return engine.TakeDiscard{PlayerID: ctx.PlayerID}, plan
	}

	ctx.Plan = plan
	return engine.DrawCard{PlayerID: ctx.PlayerID}, plan
}

// wantsDiscardTop is the draw-vs-take choice: a visible low card beats the
// expected value of a blind draw. Easy bots only grab the obviously great
// ones.
func (s Service) wantsDiscardTop(ctx *Context, top engine.Card) bool {
	threshold := 3
	if s.Difficulty == engine.DifficultyEasy {
		threshold = 1
	}
	if s.worstKnownPosition(ctx) < 0 {
		return false
	}
	return top.Value() <= threshold
}

// worstKnownPosition returns the bot's known own position with the highest
// value, or -1 when it knows nothing about its hand.
func (s Service) worstKnownPosition(ctx *Context) int {
	me := ctx.self()
	best, bestVal := -1, 0
	for _, pos := range me.KnownCardPositions {
		if pos < 0 || pos >= len(me.Hand) {
			continue
		}
		v := me.Hand[pos].Value()
		if best == -1 || v > bestVal {
			best, bestVal = pos, v
		}
	}
	return best
}

// decidePending drives the bot through the lifecycle of its own pending
// card, replaying the cached plan for the choosing step.
func (s Service) decidePending(ctx *Context) engine.Action {
	g := ctx.State
	p := g.Pending

	switch g.SubPhase {
	case engine.SubPhaseChoosing:
		return s.decideChoosing(ctx)

	case engine.SubPhaseSelecting:
		if plan := ctx.Plan; plan != nil && plan.TurnCount == g.TurnCount && plan.TakeDiscard && !plan.UseAction {
			return engine.DiscardCard{PlayerID: ctx.PlayerID}
		}
		use := engine.UseCardAction{PlayerID: ctx.PlayerID}
		if p.CanUseAction && engine.Validate(g, use).Valid {
			return use
		}
		return engine.DiscardCard{PlayerID: ctx.PlayerID}

	case engine.SubPhaseAwaiting:
		return s.decideTargeting(ctx)

	case engine.SubPhaseDeclaringRank:
		return engine.DeclareKingAction{PlayerID: ctx.PlayerID, DeclaredRank: s.kingRank(ctx)}
	}
	return nil
}

func (s Service) decideChoosing(ctx *Context) engine.Action {
	g := ctx.State
	card := g.Pending.Card

	// Replay the committed plan when one exists for this turn.
	if plan := ctx.Plan; plan != nil && plan.TurnCount == g.TurnCount && plan.TakeDiscard {
		if pos := plan.SwapPosition; pos >= 0 && pos < len(ctx.self().Hand) {
			return engine.SwapCard{PlayerID: ctx.PlayerID, Position: pos, DeclaredRank: plan.DeclareRank}
		}
		return engine.DiscardCard{PlayerID: ctx.PlayerID}
	}

	// Drawn from the pile: play actions, keep low cards, shed the rest.
	if card.Rank.HasAction() && engine.Validate(g, engine.UseCardAction{PlayerID: ctx.PlayerID}).Valid {
		return engine.UseCardAction{PlayerID: ctx.PlayerID}
	}
	if pos := s.worstKnownPosition(ctx); pos >= 0 && ctx.self().Hand[pos].Value() > card.Value() {
		return engine.SwapCard{PlayerID: ctx.PlayerID, Position: pos, DeclaredRank: ctx.self().Hand[pos].Rank}
	}
	return engine.DiscardCard{PlayerID: ctx.PlayerID}
}

// decideTargeting picks targets for the pending card action, one per call.
func (s Service) decideTargeting(ctx *Context) engine.Action {
	g := ctx.State
	p := g.Pending

	switch p.TargetKind {
	case engine.ActionPeekOwn:
		if len(p.Targets) == 1 {
			return engine.ConfirmPeek{PlayerID: ctx.PlayerID}
		}
		pos := s.unknownOwnPosition(ctx)
		return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: ctx.PlayerID, Position: pos}

	case engine.ActionPeekOpponent:
		if len(p.Targets) == 1 {
			return engine.ConfirmPeek{PlayerID: ctx.PlayerID}
		}
		oppID, pos := s.unknownOpponentPosition(ctx)
		return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: oppID, Position: pos}

	case engine.ActionSwapCards:
		if len(p.Targets) == 0 {
			id, pos := s.firstSwapTarget(ctx)
			return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: id, Position: pos}
		}
		oppID, pos := s.randomOpponentPosition(ctx, p.Targets[0].PlayerID)
		return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: oppID, Position: pos}

	case engine.ActionPeekThenSwap:
		switch len(p.Targets) {
		case 0:
			id, pos := s.firstSwapTarget(ctx)
			return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: id, Position: pos}
		case 1:
			oppID, pos := s.randomOpponentPosition(ctx, p.Targets[0].PlayerID)
			return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: oppID, Position: pos}
		default:
			// Swap only if it provably lowers our hand.
			mine, theirs := p.Targets[0], p.Targets[1]
			if mine.Card != nil && theirs.Card != nil && mine.Card.Value() > theirs.Card.Value() {
				return engine.ExecuteQueenSwap{PlayerID: ctx.PlayerID}
			}
			return engine.SkipQueenSwap{PlayerID: ctx.PlayerID}
		}

	case engine.ActionForceDraw:
		oppID := s.smallestOpponent(ctx)
		return engine.SelectActionTarget{PlayerID: ctx.PlayerID, TargetPlayerID: oppID, Position: 0}

	case engine.ActionDeclare:
		target, pos := s.randomOpponentPosition(ctx, "")
		return engine.SelectKingCardTarget{PlayerID: ctx.PlayerID, TargetPlayerID: target, Position: pos}
	}
	return nil
}

// decideTossIn sheds every own card the bot knows matches the window rank,
// then signals done.
func (s Service) decideTossIn(ctx *Context) engine.Action {
	g := ctx.State
	me := ctx.self()
	if g.TossIn.IsReady(ctx.PlayerID) {
		return nil
	}
	for _, pos := range me.KnownCardPositions {
		if pos >= 0 && pos < len(me.Hand) && me.Hand[pos].Rank == g.TossIn.Rank {
			return engine.ParticipateInTossIn{PlayerID: ctx.PlayerID, Position: pos}
		}
	}
	return engine.PlayerTossInFinished{PlayerID: ctx.PlayerID}
}

// shouldCallVinto delegates to the round solver. The bot only considers the
// call when it knows its whole hand; anything less and the "exact caller
// score" premise does not hold.
func (s Service) shouldCallVinto(ctx *Context) bool {
	g := ctx.State
	if g.IsVintoCalled() || g.Phase != engine.PhasePlaying {
		return false
	}
	me := ctx.self()
	if len(me.KnownCardPositions) < len(me.Hand) {
		return false
	}
	// Easy bots never end the game on purpose.
	if s.Difficulty == engine.DifficultyEasy {
		return false
	}

	analysis := ValidateVintoCall(me.Hand, ctx.Memory.Profiles(g), g.DiscardPile.Cards)
	if !analysis.ShouldCallVinto {
		return false
	}
	if s.Difficulty == engine.DifficultyModerate {
		// Moderate bots want headroom on top of the worst-case margin.
		return analysis.WorstCaseOpponent-analysis.CallerScore >= 2
	}
	return true
}

// kingRank picks the declaration: the rank the bot holds the most known
// copies of, so its own toss-in follow-up is guaranteed; falls back to the
// window-opening classic, the Ace.
func (s Service) kingRank(ctx *Context) engine.Rank {
	me := ctx.self()
	counts := make(map[engine.Rank]int)
	for _, pos := range me.KnownCardPositions {
		if pos >= 0 && pos < len(me.Hand) {
			counts[me.Hand[pos].Rank]++
		}
	}
	best, bestN := engine.RankAce, 0
	for r, n := range counts {
		if n > bestN {
			best, bestN = r, n
		}
	}
	return best
}

// firstSwapTarget picks the first Jack/Queen target: our own worst known
// card, any of our cards, or — with an empty hand — any seat with cards.
func (s Service) firstSwapTarget(ctx *Context) (string, int) {
	if pos := s.worstKnownPosition(ctx); pos >= 0 {
		return ctx.PlayerID, pos
	}
	if len(ctx.self().Hand) > 0 {
		return ctx.PlayerID, 0
	}
	return s.randomOpponentPosition(ctx, "")
}

func (s Service) unknownOwnPosition(ctx *Context) int {
	me := ctx.self()
	for pos := range me.Hand {
		if !me.KnowsPosition(pos) {
			return pos
		}
	}
	return 0
}

func (s Service) unknownOpponentPosition(ctx *Context) (string, int) {
	g := ctx.State
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == ctx.PlayerID || len(p.Hand) == 0 {
			continue
		}
		known := ctx.Memory.Known(p.ID)
		for pos := range p.Hand {
			if _, ok := known[pos]; !ok {
				return p.ID, pos
			}
		}
	}
	// Everything is already in memory: re-peek someone, but never ourselves.
	return s.randomOpponentPosition(ctx, ctx.PlayerID)
}

// randomOpponentPosition picks any seat with cards other than exclude and
// the actor's own first choice rules.
func (s Service) randomOpponentPosition(ctx *Context, exclude string) (string, int) {
	g := ctx.State
	var candidates []*engine.PlayerState
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == exclude || len(p.Hand) == 0 {
			continue
		}
		if p.ID == ctx.PlayerID && exclude != "" {
			// Second swap target: prefer a seat other than our own.
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return ctx.PlayerID, 0
	}
	p := candidates[ctx.Rand.IntN(len(candidates))]
	return p.ID, ctx.Rand.IntN(len(p.Hand))
}

func (s Service) smallestOpponent(ctx *Context) string {
	g := ctx.State
	best, bestN := "", 0
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == ctx.PlayerID {
			continue
		}
		if best == "" || len(p.Hand) < bestN {
			best, bestN = p.ID, len(p.Hand)
		}
	}
	return best
}
