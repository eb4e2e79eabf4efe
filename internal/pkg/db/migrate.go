package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations holds the schema statements in application order. Statements
// are idempotent so the runner can be re-applied on every startup.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "worlds",
		sql: `
		CREATE TABLE IF NOT EXISTS worlds (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
	`,
	},
	{
		name: "cities and goods",
		sql: `
		CREATE TABLE IF NOT EXISTS cities (
			id BIGSERIAL PRIMARY KEY,
			world_id BIGINT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			UNIQUE (world_id, name)
		);
		CREATE TABLE IF NOT EXISTS goods (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS city_goods (
			city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE CASCADE,
			good_id BIGINT NOT NULL REFERENCES goods(id) ON DELETE CASCADE,
			PRIMARY KEY (city_id, good_id)
		);
	`,
	},
	{
		name: "contracts and cards",
		sql: `
		CREATE TABLE IF NOT EXISTS contracts (
			id BIGSERIAL PRIMARY KEY,
			good_id BIGINT NOT NULL REFERENCES goods(id),
			city_id BIGINT NOT NULL REFERENCES cities(id),
			amount BIGINT NOT NULL DEFAULT 0,
			UNIQUE (good_id, city_id)
		);
		CREATE TABLE IF NOT EXISTS cards (
			id BIGSERIAL PRIMARY KEY,
			world_id BIGINT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
			number BIGINT,
			event TEXT,
			UNIQUE (world_id, number)
		);
		CREATE TABLE IF NOT EXISTS card_contracts (
			card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			contract_id BIGINT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
			PRIMARY KEY (card_id, contract_id)
		);
	`,
	},
	{
		name: "games and players",
		sql: `
		CREATE TABLE IF NOT EXISTS games (
			id BIGSERIAL PRIMARY KEY,
			world_id BIGINT NOT NULL REFERENCES worlds(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			money BIGINT NOT NULL DEFAULT 0,
			game_id BIGINT REFERENCES games(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_players_name ON players(name);
		CREATE TABLE IF NOT EXISTS player_cards (
			player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			PRIMARY KEY (player_id, card_id)
		);
	`,
	},
	{
		name: "deck ledger",
		sql: `
		CREATE TABLE IF NOT EXISTS played_cards (
			game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			PRIMARY KEY (game_id, card_id)
		);
	`,
	},
	{
		name: "sessions",
		sql: `
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player_id);
	`,
	},
	{
		name: "money ledger",
		sql: `
		CREATE TABLE IF NOT EXISTS money_ledger (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			kind VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_money_ledger_player_time ON money_ledger(player_id, created_at DESC);
	`,
	},
}

// Migrate applies the database schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return err
		}
		log.Info().Int("step", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
