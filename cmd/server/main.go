package main

import (
	"net/http"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"skroodle/internal/config"
	"skroodle/internal/db"
	"skroodle/internal/game"
	"skroodle/internal/server"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	// the database is optional: without one, sessions live in memory and
	// words come from the word list file alone
	conn, err := db.Open()
	if err != nil {
		logger.Warn().Err(err).Msg("running without a database")
		conn = nil
	} else if err := db.Configure(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, time.Duration(cfg.DBConnMaxLifetimeS)*time.Second); err != nil {
		logger.Fatal().Err(err).Msg("database pool configuration failed")
	}

	words := game.LoadWordBank(cfg.WordListPath, logger)
	if conn != nil {
		stored, err := db.LoadWords(conn)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load word library")
		} else {
			words.Merge(stored)
		}
	}
	if words.Size() == 0 {
		logger.Fatal().Str("path", cfg.WordListPath).Msg("no words available")
	}
	logger.Info().Int("words", words.Size()).Msg("word bank loaded")

	registry := game.NewRegistry(words, cfg.Timings(), clockwork.NewRealClock(), logger)
	srv := server.New(conn, cfg, registry, logger)

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	logger.Info().Str("addr", addr).Msg("skroodle server listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
