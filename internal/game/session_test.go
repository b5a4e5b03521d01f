package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintolabs/vinto/engine"
)

// recorder collects every session event for later inspection.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func threeBots() []engine.Seat {
	return []engine.Seat{
		{ID: "p1", Name: "Ana", IsBot: true},
		{ID: "p2", Name: "Bo", IsBot: true},
		{ID: "p3", Name: "Cyd", IsBot: true},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestSelfPlayRunsToCompletion(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{
		Seed:       42,
		Seats:      threeBots(),
		Difficulty: engine.DifficultyHard,
		MaxRounds:  40,
		OnEvent:    rec.observe,
		Logger:     quietLogger(),
	})
	s.Start(context.Background())

	select {
	case <-s.Done():
	case <-time.After(60 * time.Second):
		t.Fatal("self-play game did not finish")
	}

	events := rec.snapshot()
	require.NotEmpty(t, events, "a full game must produce events")

	// Every transition conserves the deck and carries a strictly newer state.
	for i, ev := range events {
		assert.Equal(t, engine.DeckSize, ev.State.CardCount(), "event %d (%s) broke conservation", i, ev.Action.Kind())
	}

	res := s.Outcome()
	require.NotEmpty(t, res.WinnerIDs, "someone has to win")
	for _, id := range res.WinnerIDs {
		assert.Contains(t, res.Scores, id)
	}
}

func TestSelfPlayIsDeterministic(t *testing.T) {
	run := func() engine.Result {
		s := NewSession(Options{
			Seed:       1234,
			Seats:      threeBots(),
			Difficulty: engine.DifficultyModerate,
			MaxRounds:  30,
			Logger:     quietLogger(),
		})
		s.Start(context.Background())
		select {
		case <-s.Done():
		case <-time.After(60 * time.Second):
			t.Fatal("game did not finish")
		}
		return s.Outcome()
	}

	a := run()
	b := run()
	assert.Equal(t, a.Scores, b.Scores, "same seed must replay identically")
	assert.Equal(t, a.WinnerIDs, b.WinnerIDs)
}

func TestDispatchRejectsInvalidAction(t *testing.T) {
	s := NewSession(Options{
		Seed:   7,
		Seats:  threeBots(),
		Logger: quietLogger(),
	})
	// Not started: the game sits in setup, so drawing is illegal.
	before := s.State()
	err := s.Dispatch(context.Background(), engine.DrawCard{PlayerID: "p1"})
	require.Error(t, err)
	after := s.State()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.ActionSeq, after.ActionSeq, "a rejected action must not touch the state")
}

func TestStateReturnsACopy(t *testing.T) {
	s := NewSession(Options{
		Seed:   9,
		Seats:  threeBots(),
		Logger: quietLogger(),
	})
	g := s.State()
	g.Players[0].Hand[0] = engine.Card{ID: "forged", Rank: engine.RankJoker}
	g2 := s.State()
	assert.NotEqual(t, "forged", g2.Players[0].Hand[0].ID, "State must hand out deep copies")
}
