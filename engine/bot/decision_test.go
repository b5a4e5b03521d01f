package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintolabs/vinto/engine"
)

// botTable builds a two-seat playing-phase game with p1 (a bot) to move.
// Hands and piles are laid out explicitly; piles are bottom-first.
func botTable(t *testing.T, p1Hand, p2Hand, draw, discard []engine.Card) engine.GameState {
	t.Helper()
	g := engine.GameState{
		Phase:    engine.PhasePlaying,
		SubPhase: engine.SubPhaseAIThinking,
		Players: []engine.PlayerState{
			{ID: "p1", Name: "Ana", IsBot: true, Hand: p1Hand},
			{ID: "p2", Name: "Bo", IsBot: true, Hand: p2Hand},
		},
		TurnCount:   1,
		RoundNumber: 1,
		DrawPile:    engine.NewPile(draw),
		DiscardPile: engine.NewPile(discard),
		Difficulty:  engine.DifficultyModerate,
		RNG:         7,
	}
	return g
}

func botCtx(g *engine.GameState, plan *TurnPlan) *Context {
	return &Context{
		State:    g,
		PlayerID: "p1",
		Memory:   NewMemory("p1"),
		Rand:     NewRand(7),
		Plan:     plan,
	}
}

func step(t *testing.T, g engine.GameState, a engine.Action) engine.GameState {
	t.Helper()
	next, err := engine.Reduce(g, a)
	require.NoError(t, err, "%s", a.Kind())
	return next
}

func TestBotSetupPeeksThenFinishes(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := engine.NewGame(11, []engine.Seat{
		{ID: "p1", Name: "Ana", IsBot: true},
		{ID: "p2", Name: "Bo", IsBot: true},
	}, engine.DifficultyModerate)
	g.Deal()
	g.Phase = engine.PhaseSetup

	for i := 0; i < engine.SetupPeekLimit; i++ {
		a, _ := svc.Decide(botCtx(&g, nil))
		peek, ok := a.(engine.PeekSetupCard)
		require.True(t, ok, "expected a setup peek, got %T", a)
		g = step(t, g, peek)
	}

	a, _ := svc.Decide(botCtx(&g, nil))
	_, ok := a.(engine.FinishSetup)
	require.True(t, ok, "after both peeks the bot should declare ready, got %T", a)
}

func TestBotTakesDiscardAndReplaysPlan(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := botTable(t,
		[]engine.Card{
			{ID: "h1", Rank: engine.RankNine},
			{ID: "h2", Rank: engine.RankFour},
		},
		[]engine.Card{{ID: "o1", Rank: engine.RankSix}},
		[]engine.Card{{ID: "s1", Rank: engine.RankSeven}},
		[]engine.Card{{ID: "d1", Rank: engine.RankTwo}},
	)
	g.Players[0].KnownCardPositions = []int{0, 1}

	ctx := botCtx(&g, nil)
	a, plan := svc.Decide(ctx)
	_, ok := a.(engine.TakeDiscard)
	require.True(t, ok, "a visible 2 beats a known 9, got %T", a)
	require.NotNil(t, plan)
	assert.True(t, plan.TakeDiscard)
	assert.Equal(t, 0, plan.SwapPosition, "plan should target the known 9")
	assert.Equal(t, engine.RankNine, plan.DeclareRank, "the declaration is committed at plan time")
	assert.True(t, plan.UseAction, "a nine's peek is part of the plan")

	g = step(t, g, a)

	// Same turn, new decision call: the cached plan is replayed, not re-rolled.
	ctx = botCtx(&g, plan)
	a2, _ := svc.Decide(ctx)
	swap, ok := a2.(engine.SwapCard)
	require.True(t, ok, "the plan commits to swapping, got %T", a2)
	assert.Equal(t, 0, swap.Position)
	assert.Equal(t, engine.RankNine, swap.DeclaredRank, "the bot knows the displaced card and says so")

	g = step(t, g, swap)
	require.NotNil(t, g.Pending)
	assert.True(t, g.Pending.CanUseAction, "a correct declaration unlocks the nine's peek")

	ctx = botCtx(&g, plan)
	a3, _ := svc.Decide(ctx)
	_, ok = a3.(engine.UseCardAction)
	assert.True(t, ok, "an unlocked action gets used, got %T", a3)
}

func TestBotPeekOpponentNeverTargetsItself(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := botTable(t,
		[]engine.Card{{ID: "h1", Rank: engine.RankThree}},
		[]engine.Card{{ID: "o1", Rank: engine.RankSix}},
		[]engine.Card{{ID: "s1", Rank: engine.RankSeven}},
		[]engine.Card{{ID: "d1", Rank: engine.RankTwo}},
	)
	g.SubPhase = engine.SubPhaseAwaiting
	g.Pending = &engine.PendingAction{
		Card:        engine.Card{ID: "n1", Rank: engine.RankNine},
		PlayerID:    "p1",
		ActionPhase: engine.ActionPhaseTargeting,
		TargetKind:  engine.ActionPeekOpponent,
	}

	// Every opponent slot already memorized: the bot has to re-peek
	// someone, and that someone must never be itself.
	for seed := uint64(1); seed <= 32; seed++ {
		ctx := botCtx(&g, nil)
		ctx.Rand = NewRand(seed)
		ctx.Memory.Remember("p2", 0, engine.Card{ID: "o1", Rank: engine.RankSix}, 1.0)

		a, _ := svc.Decide(ctx)
		target, ok := a.(engine.SelectActionTarget)
		require.True(t, ok, "seed %d: expected a peek target, got %T", seed, a)
		assert.NotEqual(t, "p1", target.TargetPlayerID, "seed %d: a nine peeks an opponent", seed)
		assert.True(t, engine.Validate(&g, target).Valid, "seed %d: the chosen target must be legal", seed)
	}
}

func TestBotDrawsWhenDiscardIsBad(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := botTable(t,
		[]engine.Card{{ID: "h1", Rank: engine.RankThree}},
		[]engine.Card{{ID: "o1", Rank: engine.RankSix}},
		[]engine.Card{{ID: "s1", Rank: engine.RankFive}},
		[]engine.Card{{ID: "d1", Rank: engine.RankTen}},
	)
	g.Players[0].KnownCardPositions = []int{0}

	a, plan := svc.Decide(botCtx(&g, nil))
	_, ok := a.(engine.DrawCard)
	require.True(t, ok, "a visible 10 is never worth taking, got %T", a)
	assert.False(t, plan.TakeDiscard)
}

func TestBotTossesOnlyKnownMatches(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := botTable(t,
		[]engine.Card{
			{ID: "h1", Rank: engine.RankFive}, // unknown to the bot
			{ID: "h2", Rank: engine.RankFive}, // known
		},
		[]engine.Card{{ID: "o1", Rank: engine.RankSix}},
		[]engine.Card{{ID: "s1", Rank: engine.RankSeven}},
		[]engine.Card{{ID: "d1", Rank: engine.RankFive}},
	)
	g.Players[0].KnownCardPositions = []int{1}
	g.SubPhase = engine.SubPhaseTossQueue
	g.CurrentPlayerIndex = 1
	g.TossIn = &engine.ActiveTossIn{
		Rank:                engine.RankFive,
		InitiatorID:         "p2",
		OriginalPlayerIndex: 1,
		WaitingForInput:     true,
	}

	a, _ := svc.Decide(botCtx(&g, nil))
	part, ok := a.(engine.ParticipateInTossIn)
	require.True(t, ok, "the bot should toss its known five, got %T", a)
	assert.Equal(t, 1, part.Position, "never risk the unknown card at 0")

	g = step(t, g, part)

	// The known five is gone; nothing left the bot is sure about.
	a2, _ := svc.Decide(botCtx(&g, nil))
	_, ok = a2.(engine.PlayerTossInFinished)
	assert.True(t, ok, "with no known matches left the bot signals done, got %T", a2)
}

func TestBotCallsVintoOnlyWithMargin(t *testing.T) {
	svc := New(engine.DifficultyModerate)
	g := botTable(t,
		[]engine.Card{
			{ID: "c1", Rank: engine.RankAce},
			{ID: "c53", Rank: engine.RankJoker},
		},
		[]engine.Card{
			{ID: "c9", Rank: engine.RankNine},
			{ID: "c35", Rank: engine.RankTen},
		},
		[]engine.Card{{ID: "s1", Rank: engine.RankSeven}},
		[]engine.Card{{ID: "d1", Rank: engine.RankTen}},
	)
	g.Players[0].KnownCardPositions = []int{0, 1}

	ctx := botCtx(&g, nil)
	ctx.Memory.Remember("p2", 0, engine.Card{ID: "c9", Rank: engine.RankNine}, 1.0)
	ctx.Memory.Remember("p2", 1, engine.Card{ID: "c35", Rank: engine.RankTen}, 1.0)

	a, _ := svc.Decide(ctx)
	_, ok := a.(engine.CallVinto)
	require.True(t, ok, "0 against a fully known 19 is a call, got %T", a)

	// Partial self-knowledge kills the call regardless of the numbers.
	g.Players[0].KnownCardPositions = []int{0}
	a2, _ := svc.Decide(ctx)
	_, ok = a2.(engine.CallVinto)
	assert.False(t, ok, "the bot must know its whole hand before calling")
}

func TestEasyBotNeverCallsVinto(t *testing.T) {
	svc := New(engine.DifficultyEasy)
	g := botTable(t,
		[]engine.Card{{ID: "c53", Rank: engine.RankJoker}},
		[]engine.Card{{ID: "c35", Rank: engine.RankTen}},
		[]engine.Card{{ID: "s1", Rank: engine.RankSeven}},
		[]engine.Card{{ID: "d1", Rank: engine.RankTen}},
	)
	g.Players[0].KnownCardPositions = []int{0}

	ctx := botCtx(&g, nil)
	ctx.Memory.Remember("p2", 0, engine.Card{ID: "c35", Rank: engine.RankTen}, 1.0)

	a, _ := svc.Decide(ctx)
	_, ok := a.(engine.CallVinto)
	assert.False(t, ok, "easy bots play on")
}
