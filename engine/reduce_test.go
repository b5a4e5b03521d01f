package engine

import (
	"fmt"
	"reflect"
	"testing"
)

// card is shorthand for building fixture cards.
func card(id string, r Rank) Card { return Card{ID: id, Rank: r} }

// testGame builds a mid-game state with the given hands and piles. Pile
// slices are bottom-first (last element is the top). Player ids are
// "p1".."pN"; p1 is the current player.
func testGame(t *testing.T, hands [][]Card, draw, discard []Card) GameState {
	t.Helper()
	g := GameState{
		Phase:       PhasePlaying,
		SubPhase:    SubPhaseIdle,
		TurnCount:   1,
		RoundNumber: 1,
		Difficulty:  DifficultyModerate,
		RNG:         99,
	}
	for i, h := range hands {
		g.Players = append(g.Players, PlayerState{
			ID:   fmt.Sprintf("p%d", i+1),
			Name: fmt.Sprintf("Player %d", i+1),
			Hand: append([]Card(nil), h...),
		})
	}
	g.DrawPile = NewPile(draw)
	g.DiscardPile = NewPile(discard)
	return g
}

// mustReduce applies an action that is expected to succeed.
func mustReduce(t *testing.T, g GameState, a Action) GameState {
	t.Helper()
	next, err := Reduce(g, a)
	if err != nil {
		t.Fatalf("Reduce(%s) failed: %v", a.Kind(), err)
	}
	return next
}

// newDealtGame runs NewGame+Deal+setup for three players and returns a
// state at the start of p1's first turn.
func newDealtGame(t *testing.T, seed uint64) GameState {
	t.Helper()
	seats := []Seat{
		{ID: "p1", Name: "Ana"},
		{ID: "p2", Name: "Bo"},
		{ID: "p3", Name: "Cyd"},
	}
	g := NewGame(seed, seats, DifficultyModerate)
	g.Deal()
	for _, s := range seats {
		g = mustReduce(t, g, PeekSetupCard{PlayerID: s.ID, Position: 0})
		g = mustReduce(t, g, PeekSetupCard{PlayerID: s.ID, Position: 1})
		g = mustReduce(t, g, FinishSetup{PlayerID: s.ID})
	}
	if g.Phase != PhasePlaying {
		t.Fatalf("phase after setup = %q, want playing", g.Phase)
	}
	return g
}

func TestDrawCardCreatesPending(t *testing.T) {
	// Draw pile top is c1 (Ace); below it c2 (King).
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive), card("h2", RankSix)},
			{card("h3", RankTwo), card("h4", RankThree)},
		},
		[]Card{card("c2", RankKing), card("c1", RankAce)},
		[]Card{card("d1", RankFour)},
	)

	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})

	if g.DrawPile.Len() != 1 {
		t.Fatalf("draw pile len = %d, want 1", g.DrawPile.Len())
	}
	if top, _ := g.DrawPile.PeekTop(); top.ID != "c2" {
		t.Errorf("draw pile top = %s, want c2", top.ID)
	}
	if g.Pending == nil || g.Pending.Card.ID != "c1" {
		t.Fatalf("pending card = %+v, want c1", g.Pending)
	}
	if g.SubPhase != SubPhaseChoosing {
		t.Errorf("subphase = %q, want choosing", g.SubPhase)
	}
}

func TestSwapCardDisplacesHandCard(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("k1", RankKing), card("q1", RankQueen), card("j1", RankJack), card("t1", RankTen)},
			{card("h1", RankTwo)},
		},
		[]Card{card("a1", RankAce)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, SwapCard{PlayerID: "p1", Position: 0})

	hand := g.Players[0].Hand
	if hand[0].ID != "a1" {
		t.Errorf("hand[0] = %s, want a1", hand[0].ID)
	}
	if g.Pending == nil || g.Pending.Card.ID != "k1" {
		t.Fatalf("pending card = %+v, want displaced k1", g.Pending)
	}
	if g.SubPhase != SubPhaseSelecting {
		t.Errorf("subphase = %q, want selecting", g.SubPhase)
	}
	if !g.Players[0].KnowsPosition(0) {
		t.Error("actor should know the swapped-in position")
	}
}

func TestSwapDeclarationUnlocksAction(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("k1", RankKing), card("t1", RankTen)},
			{card("h1", RankTwo)},
		},
		[]Card{card("a1", RankAce)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, SwapCard{PlayerID: "p1", Position: 0, DeclaredRank: RankKing})

	if !g.Pending.CanUseAction {
		t.Fatal("correct declaration should unlock the displaced card's action")
	}
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	if g.SubPhase != SubPhaseAwaiting || g.Pending.TargetKind != ActionDeclare {
		t.Errorf("subphase=%q targetKind=%q, want awaiting_action/declare-action", g.SubPhase, g.Pending.TargetKind)
	}
}

func TestSwapWrongDeclarationDrawsPenalty(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("k1", RankKing), card("t1", RankTen)},
			{card("h1", RankTwo)},
		},
		[]Card{card("x1", RankFive), card("a1", RankAce)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, SwapCard{PlayerID: "p1", Position: 0, DeclaredRank: RankQueen})

	if g.Pending.CanUseAction {
		t.Error("wrong declaration must not unlock the action")
	}
	if len(g.Players[0].Hand) != 3 {
		t.Errorf("hand size = %d, want 3 (one penalty card)", len(g.Players[0].Hand))
	}
}

func TestDiscardCardOpensTossIn(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankSix)},
		},
		[]Card{card("s1", RankSix)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, DiscardCard{PlayerID: "p1"})

	if g.Pending != nil {
		t.Fatal("pending should be cleared after discard")
	}
	if g.TossIn == nil || g.TossIn.Rank != RankSix {
		t.Fatalf("toss-in = %+v, want open window for rank 6", g.TossIn)
	}
	if g.SubPhase != SubPhaseTossQueue {
		t.Errorf("subphase = %q, want toss_queue_active", g.SubPhase)
	}
	if top, _ := g.DiscardPile.PeekTop(); top.ID != "s1" {
		t.Errorf("discard top = %s, want s1", top.ID)
	}
}

func TestInvalidActionLeavesStateUnchanged(t *testing.T) {
	g := newDealtGame(t, 7)

	invalid := []Action{
		DrawCard{PlayerID: "p2"},                                 // not p2's turn
		SwapCard{PlayerID: "p1", Position: 0},                    // nothing pending
		ConfirmPeek{PlayerID: "p1"},                              // no peek
		ParticipateInTossIn{PlayerID: "p3", Position: 0},         // no window
		AdvanceTurn{PlayerID: "p2"},                              // not p2's turn
		SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2"}, // no action
		DrawCard{PlayerID: "ghost"},                              // unknown player
	}
	for _, a := range invalid {
		next, err := Reduce(g, a)
		if err == nil {
			t.Fatalf("Reduce(%s) should have been rejected", a.Kind())
		}
		if !reflect.DeepEqual(g, next) {
			t.Fatalf("rejected %s mutated the state", a.Kind())
		}
	}
}

func TestCardConservationThroughTurns(t *testing.T) {
	g := newDealtGame(t, 11)
	if g.CardCount() != DeckSize {
		t.Fatalf("initial card count = %d, want %d", g.CardCount(), DeckSize)
	}

	// Several full turns of draw/swap or draw/discard, checking the
	// conservation law after every transition.
	check := func(g GameState, stage string) {
		t.Helper()
		if got := g.CardCount(); got != DeckSize {
			t.Fatalf("%s: card count = %d, want %d", stage, got, DeckSize)
		}
	}

	for turn := 0; turn < 6; turn++ {
		actor := g.CurrentPlayer().ID
		g = mustReduce(t, g, DrawCard{PlayerID: actor})
		check(g, "after draw")

		if turn%2 == 0 {
			g = mustReduce(t, g, SwapCard{PlayerID: actor, Position: 0})
			check(g, "after swap")
		}
		g = mustReduce(t, g, DiscardCard{PlayerID: actor})
		check(g, "after discard")

		for _, p := range []string{"p1", "p2", "p3"} {
			g = mustReduce(t, g, PlayerTossInFinished{PlayerID: p})
			check(g, "after toss-in finished")
		}
	}
}

func TestPeekOwnFlow(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive), card("h2", RankNine)},
			{card("h3", RankTwo)},
		},
		[]Card{card("s1", RankSeven)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p1", Position: 1})

	if len(g.Pending.Targets) != 1 || g.Pending.Targets[0].Card == nil {
		t.Fatalf("peek target not recorded: %+v", g.Pending.Targets)
	}
	if g.Pending.Targets[0].Card.ID != "h2" {
		t.Errorf("peeked card = %s, want h2", g.Pending.Targets[0].Card.ID)
	}
	if !g.Players[0].KnowsPosition(1) {
		t.Error("peek-own should mark the position known")
	}

	g = mustReduce(t, g, ConfirmPeek{PlayerID: "p1"})
	if g.TossIn == nil || g.TossIn.Rank != RankSeven {
		t.Fatalf("confirm-peek should open a toss-in for rank 7, got %+v", g.TossIn)
	}
}

func TestJackBlindSwap(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankNine)},
			{card("h3", RankTwo)},
		},
		[]Card{card("s1", RankJack)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2", Position: 0})

	// Same-player second target must be rejected.
	if _, err := Reduce(g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2", Position: 0}); err == nil {
		t.Fatal("second target from the same player should be rejected")
	}

	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p3", Position: 0})

	if g.Players[1].Hand[0].ID != "h3" || g.Players[2].Hand[0].ID != "h2" {
		t.Errorf("blind swap not applied: p2=%s p3=%s", g.Players[1].Hand[0].ID, g.Players[2].Hand[0].ID)
	}
	if g.TossIn == nil || g.TossIn.Rank != RankJack {
		t.Fatalf("jack should open a toss-in for rank J, got %+v", g.TossIn)
	}
}

func TestQueenPeekThenSwap(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankNine)},
		},
		[]Card{card("s1", RankQueen)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2", Position: 0})

	if got := g.Pending.Targets; len(got) != 2 || got[0].Card == nil || got[1].Card == nil {
		t.Fatalf("queen should reveal both targets, got %+v", got)
	}

	g = mustReduce(t, g, ExecuteQueenSwap{PlayerID: "p1"})
	if g.Players[0].Hand[0].ID != "h2" || g.Players[1].Hand[0].ID != "h1" {
		t.Error("queen swap not applied")
	}
	if g.TossIn == nil || g.TossIn.Rank != RankQueen {
		t.Fatalf("queen should open a toss-in for rank Q, got %+v", g.TossIn)
	}
}

func TestQueenSwapKeepsActorKnowledge(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankNine)},
		},
		[]Card{card("s1", RankQueen)},
		[]Card{card("d1", RankFour)},
	)
	g.Players[1].KnownCardPositions = []int{0}

	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2", Position: 0})
	g = mustReduce(t, g, ExecuteQueenSwap{PlayerID: "p1"})

	if !g.Players[0].KnowsPosition(0) {
		t.Error("the actor peeked both cards and keeps knowledge of the one it received")
	}
	if g.Players[1].KnowsPosition(0) {
		t.Error("the other owner never saw the incoming card")
	}
}

func TestAceForceDraw(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankNine)},
		},
		[]Card{card("x1", RankThree), card("s1", RankAce)},
		[]Card{card("d1", RankFour)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})
	g = mustReduce(t, g, UseCardAction{PlayerID: "p1"})
	g = mustReduce(t, g, SelectActionTarget{PlayerID: "p1", TargetPlayerID: "p2", Position: 0})

	if len(g.Players[1].Hand) != 2 {
		t.Fatalf("target hand size = %d, want 2 after forced draw", len(g.Players[1].Hand))
	}
	if g.Players[1].Hand[1].ID != "x1" {
		t.Errorf("forced card = %s, want x1", g.Players[1].Hand[1].ID)
	}
	if g.TossIn == nil || g.TossIn.Rank != RankAce {
		t.Fatalf("ace should open a toss-in for rank A, got %+v", g.TossIn)
	}
}

func TestDrawPileReshufflesFromDiscard(t *testing.T) {
	g := testGame(t,
		[][]Card{
			{card("h1", RankFive)},
			{card("h2", RankNine)},
		},
		nil,
		[]Card{card("d1", RankFour), card("d2", RankSix), card("d3", RankTwo)},
	)
	g = mustReduce(t, g, DrawCard{PlayerID: "p1"})

	if g.Pending == nil {
		t.Fatal("draw should succeed via reshuffle")
	}
	// Top discard (d3) stays; d1/d2 went to the draw pile, one was drawn.
	if g.DiscardPile.Len() != 1 {
		t.Errorf("discard len = %d, want 1", g.DiscardPile.Len())
	}
	if top, _ := g.DiscardPile.PeekTop(); top.ID != "d3" {
		t.Errorf("discard top = %s, want d3 kept in place", top.ID)
	}
	if g.DrawPile.Len() != 1 {
		t.Errorf("draw pile len = %d, want 1", g.DrawPile.Len())
	}
}
