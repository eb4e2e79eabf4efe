// Package main is the offline world loader.
//
// Usage:
//
//	loader [-config dir] game.yaml
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"crayon-rails/internal/config"
	"crayon-rails/internal/loader"
	"crayon-rails/internal/pkg/db"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	configPath := flag.String("config", "config", "configuration directory")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal().Msg("Usage: loader [-config dir] game.yaml")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	wf, err := loader.Parse(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse world file")
	}

	ctx := context.Background()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	if err := loader.Load(ctx, dbPool.Pool, wf); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
}
