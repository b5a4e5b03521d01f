// vinto-sim runs seeded bot self-play games and reports the outcomes.
//
// Configuration comes from the environment (optionally a .env file):
// VINTO_GAMES, VINTO_PLAYERS, VINTO_SEED, VINTO_DIFFICULTY, VINTO_THINK_MS,
// VINTO_REDIS_ADDR, VINTO_DATABASE_URL, VINTO_LOG_LEVEL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vintolabs/vinto/engine"
	"github.com/vintolabs/vinto/internal/cache"
	"github.com/vintolabs/vinto/internal/config"
	"github.com/vintolabs/vinto/internal/database"
	"github.com/vintolabs/vinto/internal/game"
)

var seatNames = []string{"Ana", "Bo", "Cyd", "Dee", "Eli", "Fay"}

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := cache.NewPublisher(cfg.RedisAddr, cfg.RedisPassword)
	defer publisher.Close()

	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Warn("persistence disabled")
		store = nil
	}
	defer store.Close()

	seats := make([]engine.Seat, cfg.NumPlayers)
	for i := range seats {
		seats[i] = engine.Seat{
			ID:    fmt.Sprintf("p%d", i+1),
			Name:  seatNames[i%len(seatNames)],
			IsBot: true,
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	callerWins, coalitionWins := 0, 0
	winsBySeat := make(map[string]int)

	for n := 0; n < cfg.Games; n++ {
		select {
		case <-ctx.Done():
			log.Info("interrupted")
			return
		default:
		}

		s := game.NewSession(game.Options{
			Seed:       seed + uint64(n),
			Seats:      seats,
			Difficulty: cfg.Difficulty,
			ThinkDelay: cfg.ThinkDelay,
			Publisher:  publisher,
			Store:      store,
			Logger:     log,
		})
		s.Start(ctx)

		select {
		case <-s.Done():
		case <-ctx.Done():
			log.Info("interrupted")
			return
		}

		res := s.Outcome()
		if res.CallerWon {
			callerWins++
		} else if res.VintoCaller != "" {
			coalitionWins++
		}
		for _, id := range res.WinnerIDs {
			winsBySeat[id]++
		}

		log.WithFields(logrus.Fields{
			"game":    n + 1,
			"seed":    seed + uint64(n),
			"scores":  res.Scores,
			"winners": res.WinnerIDs,
			"caller":  res.VintoCaller,
		}).Info("game finished")
	}

	log.WithFields(logrus.Fields{
		"games":         cfg.Games,
		"callerWins":    callerWins,
		"coalitionWins": coalitionWins,
		"winsBySeat":    winsBySeat,
	}).Info("simulation complete")
}
