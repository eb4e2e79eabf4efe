// Package model defines the persisted entities of the crayon-rails service.
package model

import "time"

// World is a named ruleset/map. Worlds, their cities, goods, cards, and
// contracts are loaded by the offline loader and treated as read-mostly
// reference data during play.
type World struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// City belongs to one world and produces a set of goods.
type City struct {
	ID      int64  `db:"id"`
	WorldID int64  `db:"world_id"`
	Name    string `db:"name"`
}

// Good is a named resource type shared across worlds.
type Good struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Contract is a demand for a good at a city for a fixed payout.
// The (good, city) pair is the natural key; the amount is overwritten
// on re-import.
type Contract struct {
	ID     int64 `db:"id"`
	GoodID int64 `db:"good_id"`
	CityID int64 `db:"city_id"`
	Amount int64 `db:"amount"`
}

// Card belongs to one world. A card with Event set is an event card;
// a card with attached contracts is a contract card. Number is the
// number printed on the physical card, when there is one.
type Card struct {
	ID      int64   `db:"id"`
	WorldID int64   `db:"world_id"`
	Number  *int64  `db:"number"`
	Event   *string `db:"event"`
}

// Game is one play-through of a world. Its deck state is implicit in the
// played_cards ledger rows for the game.
type Game struct {
	ID        int64     `db:"id"`
	WorldID   int64     `db:"world_id"`
	WorldName string    `db:"world_name"`
	CreatedAt time.Time `db:"created_at"`
}

// Player is a persistent identity keyed by a globally unique name.
// GameID is nil while the player is in the lobby.
type Player struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Money     int64     `db:"money"`
	GameID    *int64    `db:"game_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PlayedCard marks a card as drawn in a game's current shuffle epoch.
// Reshuffling a deck truncates these rows for the game.
type PlayedCard struct {
	GameID int64 `db:"game_id"`
	CardID int64 `db:"card_id"`
}

// LedgerEntry records one money mutation for a player.
type LedgerEntry struct {
	ID        int64     `db:"id"`
	PlayerID  int64     `db:"player_id"`
	Amount    int64     `db:"amount"`
	Kind      string    `db:"kind"`
	CreatedAt time.Time `db:"created_at"`
}

// Ledger entry kinds.
const (
	LedgerGain     = "gain"
	LedgerSpend    = "spend"
	LedgerContract = "contract"
)
