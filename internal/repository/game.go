package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crayon-rails/internal/model"
)

// GameRepository handles game data persistence.
type GameRepository struct {
	q DBTX
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(q DBTX) *GameRepository {
	return &GameRepository{q: q}
}

// Create creates a new game bound to a world.
func (r *GameRepository) Create(ctx context.Context, worldID int64) (*model.Game, error) {
	const query = `
		WITH created AS (
			INSERT INTO games (world_id, created_at)
			VALUES ($1, NOW())
			RETURNING id, world_id, created_at
		)
		SELECT created.id, created.world_id, w.name, created.created_at
		FROM created
		JOIN worlds w ON w.id = created.world_id
	`

	var g model.Game
	err := r.q.QueryRow(ctx, query, worldID).Scan(&g.ID, &g.WorldID, &g.WorldName, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &g, nil
}

// GetByID retrieves a game with its world name.
// Returns ErrGameNotFound if the game does not exist.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	const query = `
		SELECT g.id, g.world_id, w.name, g.created_at
		FROM games g
		JOIN worlds w ON w.id = g.world_id
		WHERE g.id = $1
	`

	var g model.Game
	err := r.q.QueryRow(ctx, query, id).Scan(&g.ID, &g.WorldID, &g.WorldName, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

// List retrieves all games ordered by id, with world names.
func (r *GameRepository) List(ctx context.Context) ([]*model.Game, error) {
	const query = `
		SELECT g.id, g.world_id, w.name, g.created_at
		FROM games g
		JOIN worlds w ON w.id = g.world_id
		ORDER BY g.id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.WorldID, &g.WorldName, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
