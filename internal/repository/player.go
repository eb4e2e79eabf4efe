package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crayon-rails/internal/model"
)

const playerColumns = "id, name, money, game_id, created_at, updated_at"

// PlayerRepository handles player data persistence, including the hand
// (player_cards join rows).
type PlayerRepository struct {
	q DBTX
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(q DBTX) *PlayerRepository {
	return &PlayerRepository{q: q}
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(&p.ID, &p.Name, &p.Money, &p.GameID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a player by id.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// FindByName retrieves the player with exactly the given name.
// Returns ErrPlayerNotFound for zero matches and ErrDuplicatePlayer for more
// than one, which indicates corrupted data rather than a bad request.
func (r *PlayerRepository) FindByName(ctx context.Context, name string) (*model.Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players WHERE name = $1`

	rows, err := r.q.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Money, &p.GameID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	switch len(players) {
	case 0:
		return nil, ErrPlayerNotFound
	case 1:
		return players[0], nil
	default:
		return nil, fmt.Errorf("%w: %q has %d rows", ErrDuplicatePlayer, name, len(players))
	}
}

// Create creates a new player with zero money and no current game.
func (r *PlayerRepository) Create(ctx context.Context, name string) (*model.Player, error) {
	const query = `
		INSERT INTO players (name, money, game_id, created_at, updated_at)
		VALUES ($1, 0, NULL, NOW(), NOW())
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// SetGame sets or clears (gameID nil) the player's current game.
func (r *PlayerRepository) SetGame(ctx context.Context, playerID int64, gameID *int64) error {
	const query = `
		UPDATE players
		SET game_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, playerID, gameID)
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// AdjustMoney adds amount to the player's balance. The amount can be negative
// and the balance has no floor. Returns the updated player.
func (r *PlayerRepository) AdjustMoney(ctx context.Context, playerID int64, amount int64) (*model.Player, error) {
	const query = `
		UPDATE players
		SET money = money + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.q.QueryRow(ctx, query, playerID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to adjust money: %w", err)
	}
	return p, nil
}

// AddCard puts a card into the player's hand.
func (r *PlayerRepository) AddCard(ctx context.Context, playerID, cardID int64) error {
	const query = `
		INSERT INTO player_cards (player_id, card_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, playerID, cardID); err != nil {
		return fmt.Errorf("failed to add card to hand: %w", err)
	}
	return nil
}

// RemoveCard removes a card from the player's hand. Returns whether a card
// was actually removed; removing a card not held is not an error.
func (r *PlayerRepository) RemoveCard(ctx context.Context, playerID, cardID int64) (bool, error) {
	const query = `DELETE FROM player_cards WHERE player_id = $1 AND card_id = $2`

	result, err := r.q.Exec(ctx, query, playerID, cardID)
	if err != nil {
		return false, fmt.Errorf("failed to remove card from hand: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// HoldsCard checks whether the player currently holds the card.
func (r *PlayerRepository) HoldsCard(ctx context.Context, playerID, cardID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM player_cards WHERE player_id = $1 AND card_id = $2)`

	var held bool
	if err := r.q.QueryRow(ctx, query, playerID, cardID).Scan(&held); err != nil {
		return false, fmt.Errorf("failed to check hand: %w", err)
	}
	return held, nil
}

// Hand retrieves the player's held cards ordered by card id.
func (r *PlayerRepository) Hand(ctx context.Context, playerID int64) ([]*model.Card, error) {
	const query = `
		SELECT c.id, c.world_id, c.number, c.event
		FROM player_cards pc
		JOIN cards c ON c.id = pc.card_id
		WHERE pc.player_id = $1
		ORDER BY c.id
	`

	rows, err := r.q.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hand: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.WorldID, &c.Number, &c.Event); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hand: %w", err)
	}

	return cards, nil
}

// NamesByGame retrieves player names grouped by the game they are in,
// for the lobby game listing.
func (r *PlayerRepository) NamesByGame(ctx context.Context) (map[int64][]string, error) {
	const query = `
		SELECT game_id, name
		FROM players
		WHERE game_id IS NOT NULL
		ORDER BY game_id, id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list game members: %w", err)
	}
	defer rows.Close()

	members := make(map[int64][]string)
	for rows.Next() {
		var gameID int64
		var name string
		if err := rows.Scan(&gameID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan game member: %w", err)
		}
		members[gameID] = append(members[gameID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game members: %w", err)
	}

	return members, nil
}
