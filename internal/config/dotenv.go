package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skroodle/internal/game"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Rounds             int
	SecondsPerRound    int
	GameStartDelayMS   int
	ChoiceSeconds      int
	TurnEndSeconds     int
	RoundEndSeconds    int
	GameEndSeconds     int
	SyncIntervalMS     int
	WordListPath       string
	StrokeEpsilon      float64
	AllowedOrigins     []string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetimeS int
}

func Default() Config {
	return Config{
		Rounds:             3,
		SecondsPerRound:    60,
		GameStartDelayMS:   1500,
		ChoiceSeconds:      10,
		TurnEndSeconds:     8,
		RoundEndSeconds:    5,
		GameEndSeconds:     60,
		SyncIntervalMS:     100,
		WordListPath:       "words.txt",
		StrokeEpsilon:      0,
		AllowedOrigins:     []string{"http://localhost:3000", "https://skroodle.io", "https://skroodle.com"},
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     10,
		DBConnMaxLifetimeS: 300,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Rounds = value
		}
	}
	if raw := os.Getenv("SECONDS_PER_ROUND"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SecondsPerRound = value
		}
	}
	if raw := os.Getenv("GAME_START_DELAY_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.GameStartDelayMS = value
		}
	}
	if raw := os.Getenv("CHOICE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ChoiceSeconds = value
		}
	}
	if raw := os.Getenv("TURN_END_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TurnEndSeconds = value
		}
	}
	if raw := os.Getenv("ROUND_END_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundEndSeconds = value
		}
	}
	if raw := os.Getenv("GAME_END_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GameEndSeconds = value
		}
	}
	if raw := os.Getenv("SYNC_INTERVAL_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SyncIntervalMS = value
		}
	}
	if raw := os.Getenv("WORD_LIST_PATH"); raw != "" {
		cfg.WordListPath = raw
	}
	if raw := os.Getenv("STROKE_EPSILON"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.StrokeEpsilon = value
		}
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeS = value
		}
	}
	return cfg
}

// Timings converts the configured phase delays into the game package's form.
func (c Config) Timings() game.Timings {
	return game.Timings{
		GameStartDelay: time.Duration(c.GameStartDelayMS) * time.Millisecond,
		ChoiceTimeout:  time.Duration(c.ChoiceSeconds) * time.Second,
		TurnEndDelay:   time.Duration(c.TurnEndSeconds) * time.Second,
		RoundEndDelay:  time.Duration(c.RoundEndSeconds) * time.Second,
		GameEndGrace:   time.Duration(c.GameEndSeconds) * time.Second,
		SyncInterval:   time.Duration(c.SyncIntervalMS) * time.Millisecond,
	}
}
