// Package game hosts a running Vinto game: it owns the authoritative
// engine state behind a mutex, applies actions through the reducer, drives
// bot seats on timers, and fans results out to observers, Redis, and
// Postgres. The engine stays pure; everything impure lives here.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vintolabs/vinto/engine"
	"github.com/vintolabs/vinto/engine/bot"
	"github.com/vintolabs/vinto/internal/cache"
	"github.com/vintolabs/vinto/internal/database"
)

// Event is one observable session transition: the action that was applied
// and the resulting state. State is a deep value copy, safe to hold.
type Event struct {
	GameID uuid.UUID
	Action engine.Action
	State  engine.GameState
}

// OnEventFunc receives every applied action. Called without the session
// lock held.
type OnEventFunc func(Event)

// botRunner is one bot seat's decision loop state.
type botRunner struct {
	svc  bot.Service
	mem  *bot.Memory
	plan *bot.TurnPlan
}

// Session owns one game from deal to scoring.
type Session struct {
	ID  uuid.UUID
	log *logrus.Entry

	mu    sync.Mutex
	state engine.GameState
	bots  map[string]*botRunner

	thinkDelay  time.Duration
	maxRounds   int
	publisher   *cache.Publisher
	store       *database.Store
	onEvent     OnEventFunc
	actionIndex int

	kick     chan struct{}
	done     chan struct{}
	doneOnce sync.Once
}

// DefaultMaxRounds caps bot self-play: a table where nobody ever calls
// Vinto is scored as-is once the cap is passed.
const DefaultMaxRounds = 60

// Options configures a session. Publisher and Store may be nil; OnEvent may
// be nil.
type Options struct {
	Seed       uint64
	Seats      []engine.Seat
	Difficulty engine.Difficulty
	ThinkDelay time.Duration
	MaxRounds  int
	Publisher  *cache.Publisher
	Store      *database.Store
	OnEvent    OnEventFunc
	Logger     *logrus.Logger
}

// NewSession deals a fresh game. Start must be called to begin play.
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	id := uuid.New()

	g := engine.NewGame(opts.Seed, opts.Seats, opts.Difficulty)
	g.Deal()

	s := &Session{
		ID:         id,
		log:        opts.Logger.WithField("game", id.String()[:8]),
		state:      g,
		bots:       make(map[string]*botRunner),
		thinkDelay: opts.ThinkDelay,
		maxRounds:  opts.MaxRounds,
		publisher:  opts.Publisher,
		store:      opts.Store,
		onEvent:    opts.OnEvent,
		kick:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, seat := range opts.Seats {
		if seat.IsBot {
			s.bots[seat.ID] = &botRunner{
				svc: bot.New(opts.Difficulty),
				mem: bot.NewMemory(seat.ID),
			}
		}
	}
	return s
}

// Done is closed when the game reaches scoring.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns a deep copy of the current game state.
func (s *Session) State() engine.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Outcome returns the final result. Valid only after Done is closed.
func (s *Session) Outcome() engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Outcome()
}

// Start persists the initial snapshot and launches the bot driver.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	snap, err := s.state.Snapshot()
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Error("initial snapshot failed")
	} else if err := s.store.SaveSnapshot(ctx, s.ID, "initial", snap); err != nil {
		s.log.WithError(err).Warn("could not persist initial snapshot")
	}

	s.log.WithField("bots", len(s.bots)).Info("game started")
	go s.runBots()
	s.wakeBots()
}

// Dispatch applies one action to the game. Invalid actions are logged and
// returned as errors; the state is untouched either way the engine promises.
func (s *Session) Dispatch(ctx context.Context, a engine.Action) error {
	s.mu.Lock()
	next, err := engine.Reduce(s.state, a)
	if err != nil {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"kind":   string(a.Kind()),
			"player": a.Actor(),
		}).WithError(err).Debug("action rejected")
		return err
	}
	s.state = next
	s.actionIndex++
	idx := s.actionIndex
	s.feedBotMemories()
	terminal := s.state.IsTerminal()
	var snapshot engine.GameState
	if s.onEvent != nil || terminal {
		snapshot = s.state.Clone()
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"kind":   string(a.Kind()),
		"player": a.Actor(),
		"index":  idx,
	}).Debug("action applied")

	s.publishAction(idx, a)

	if s.onEvent != nil {
		s.onEvent(Event{GameID: s.ID, Action: a, State: snapshot})
	}

	if terminal {
		s.finish(ctx, snapshot)
		return nil
	}
	s.wakeBots()
	return nil
}

// feedBotMemories lets every bot consume the public log and its own pending
// peeks. Caller holds the lock.
func (s *Session) feedBotMemories() {
	for id, r := range s.bots {
		r.mem.ObserveHistory(&s.state)
		if s.state.Pending != nil && s.state.Pending.PlayerID == id {
			r.mem.AbsorbPeek(s.state.Pending)
		}
	}
}

// publishAction ships the action record to Redis off the hot path.
func (s *Session) publishAction(idx int, a engine.Action) {
	if s.publisher == nil {
		return
	}
	payload, err := engine.EncodeAction(a)
	if err != nil {
		s.log.WithError(err).Warn("could not encode action for publishing")
		return
	}
	rec := cache.ActionRecord{
		GameID:    s.ID,
		Index:     idx,
		PlayerID:  a.Actor(),
		Kind:      string(a.Kind()),
		Action:    payload,
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.log.WithError(err).Warn("action publish failed")
		}
	}()
}

// wakeBots nudges the driver goroutine. Non-blocking; a pending nudge is
// enough.
func (s *Session) wakeBots() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// runBots is the single bot driver: it serializes every bot decision so two
// seats can never act on the same stale state. External Dispatch calls wake
// it through the kick channel.
func (s *Session) runBots() {
	rejections := 0
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
		}

		for {
			s.mu.Lock()
			stalled := !s.state.IsTerminal() && s.state.RoundNumber > s.maxRounds
			var snapshot engine.GameState
			if stalled {
				snapshot = s.state.Clone()
			}
			s.mu.Unlock()
			if stalled {
				s.log.WithField("rounds", s.maxRounds).Warn("round cap reached, scoring as-is")
				s.finish(context.Background(), snapshot)
				return
			}

			a := s.nextBotAction()
			if a == nil {
				break
			}
			if s.thinkDelay > 0 {
				time.Sleep(s.thinkDelay)
			}
			if err := s.Dispatch(context.Background(), a); err != nil {
				// Usually a human action landed between decision and
				// dispatch. Repeated rejections mean a wedged decision loop;
				// score the game as-is rather than spin.
				rejections++
				s.log.WithField("kind", string(a.Kind())).WithError(err).Debug("bot action rejected")
				if rejections >= 10 {
					s.log.Error("bot decisions repeatedly rejected, scoring as-is")
					s.finish(context.Background(), s.State())
					return
				}
			} else {
				rejections = 0
			}
			select {
			case <-s.done:
				return
			default:
			}
		}
	}
}

// nextBotAction asks each bot seat, in seat order, for a decision and
// returns the first one.
func (s *Session) nextBotAction() engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		return nil
	}
	for i := range s.state.Players {
		id := s.state.Players[i].ID
		r, isBot := s.bots[id]
		if !isBot {
			continue
		}
		ctx := &bot.Context{
			State:    &s.state,
			PlayerID: id,
			Memory:   r.mem,
			Rand:     bot.NewRand(s.state.RNG ^ uint64(i+1)),
			Plan:     r.plan,
		}
		a, plan := r.svc.Decide(ctx)
		r.plan = plan
		if a != nil {
			return a
		}
	}
	return nil
}

// finish persists the final snapshot and result, then releases waiters.
func (s *Session) finish(ctx context.Context, final engine.GameState) {
	s.doneOnce.Do(func() {
		res := final.Outcome()

		snap, err := final.Snapshot()
		if err != nil {
			s.log.WithError(err).Error("final snapshot failed")
		} else if err := s.store.SaveSnapshot(ctx, s.ID, "final", snap); err != nil {
			s.log.WithError(err).Warn("could not persist final snapshot")
		}

		scores, err := res.ScoresJSON()
		if err == nil {
			if err := s.store.SaveResult(ctx, s.ID, res.VintoCaller, res.CallerWon, res.WinnerIDs, scores); err != nil {
				s.log.WithError(err).Warn("could not persist result")
			}
		}

		s.log.WithFields(logrus.Fields{
			"caller":    res.VintoCaller,
			"callerWon": res.CallerWon,
			"winners":   res.WinnerIDs,
		}).Info("game over")

		close(s.done)
	})
}
