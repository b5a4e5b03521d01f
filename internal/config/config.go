// Package config loads adapter and CLI settings from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vintolabs/vinto/engine"
)

// Config holds every tunable the simulator and session adapter read. Zero
// values mean "feature off": no Redis publishing without an address, no
// Postgres persistence without a DSN.
type Config struct {
	RedisAddr     string
	RedisPassword string
	DatabaseURL   string
	ThinkDelay    time.Duration
	Difficulty    engine.Difficulty
	Seed          uint64
	NumPlayers    int
	Games         int
	LogLevel      logrus.Level
}

// Load reads the environment, after best-effort loading a .env file from the
// working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		RedisAddr:     os.Getenv("VINTO_REDIS_ADDR"),
		RedisPassword: os.Getenv("VINTO_REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("VINTO_DATABASE_URL"),
		ThinkDelay:    time.Duration(intEnv("VINTO_THINK_MS", 0)) * time.Millisecond,
		Difficulty:    engine.Difficulty(getenv("VINTO_DIFFICULTY", string(engine.DifficultyModerate))),
		Seed:          uint64(intEnv("VINTO_SEED", 0)),
		NumPlayers:    intEnv("VINTO_PLAYERS", 3),
		Games:         intEnv("VINTO_GAMES", 1),
		LogLevel:      logrus.InfoLevel,
	}

	if lvl, err := logrus.ParseLevel(getenv("VINTO_LOG_LEVEL", "info")); err == nil {
		cfg.LogLevel = lvl
	}
	if cfg.NumPlayers < 2 {
		cfg.NumPlayers = 2
	}
	if cfg.NumPlayers > 6 {
		cfg.NumPlayers = 6
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
