package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crayon-rails/internal/model"
)

// WorldRepository handles world, city, and good persistence. The mutating
// methods exist for the offline loader; gameplay only reads this data.
type WorldRepository struct {
	q DBTX
}

// NewWorldRepository creates a new WorldRepository instance.
func NewWorldRepository(q DBTX) *WorldRepository {
	return &WorldRepository{q: q}
}

// GetByID retrieves a world by id.
// Returns ErrWorldNotFound if the world does not exist.
func (r *WorldRepository) GetByID(ctx context.Context, id int64) (*model.World, error) {
	const query = `SELECT id, name FROM worlds WHERE id = $1`

	var w model.World
	if err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorldNotFound
		}
		return nil, fmt.Errorf("failed to get world: %w", err)
	}
	return &w, nil
}

// List retrieves all worlds ordered by id.
func (r *WorldRepository) List(ctx context.Context) ([]*model.World, error) {
	const query = `SELECT id, name FROM worlds ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []*model.World
	for rows.Next() {
		var w model.World
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, fmt.Errorf("failed to scan world: %w", err)
		}
		worlds = append(worlds, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating worlds: %w", err)
	}

	return worlds, nil
}

// UpsertByName retrieves the world with the given name, creating it if absent.
func (r *WorldRepository) UpsertByName(ctx context.Context, name string) (*model.World, error) {
	const query = `
		INSERT INTO worlds (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	var w model.World
	if err := r.q.QueryRow(ctx, query, name).Scan(&w.ID, &w.Name); err != nil {
		return nil, fmt.Errorf("failed to upsert world: %w", err)
	}
	return &w, nil
}

// UpsertCity retrieves the named city of a world, creating it if absent.
func (r *WorldRepository) UpsertCity(ctx context.Context, worldID int64, name string) (*model.City, error) {
	const query = `
		INSERT INTO cities (world_id, name)
		VALUES ($1, $2)
		ON CONFLICT (world_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, world_id, name
	`

	var c model.City
	if err := r.q.QueryRow(ctx, query, worldID, name).Scan(&c.ID, &c.WorldID, &c.Name); err != nil {
		return nil, fmt.Errorf("failed to upsert city: %w", err)
	}
	return &c, nil
}

// FindCity retrieves a city by name within a world.
// Returns pgx.ErrNoRows wrapped as a miss via the ok flag.
func (r *WorldRepository) FindCity(ctx context.Context, worldID int64, name string) (*model.City, bool, error) {
	const query = `SELECT id, world_id, name FROM cities WHERE world_id = $1 AND name = $2`

	var c model.City
	err := r.q.QueryRow(ctx, query, worldID, name).Scan(&c.ID, &c.WorldID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find city: %w", err)
	}
	return &c, true, nil
}

// UpsertGood retrieves the named good, creating it if absent. Goods are
// shared across worlds.
func (r *WorldRepository) UpsertGood(ctx context.Context, name string) (*model.Good, error) {
	const query = `
		INSERT INTO goods (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	var g model.Good
	if err := r.q.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name); err != nil {
		return nil, fmt.Errorf("failed to upsert good: %w", err)
	}
	return &g, nil
}

// FindGood retrieves a good by name.
func (r *WorldRepository) FindGood(ctx context.Context, name string) (*model.Good, bool, error) {
	const query = `SELECT id, name FROM goods WHERE name = $1`

	var g model.Good
	err := r.q.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find good: %w", err)
	}
	return &g, true, nil
}

// LinkCityGood marks a city as producing a good. Idempotent.
func (r *WorldRepository) LinkCityGood(ctx context.Context, cityID, goodID int64) error {
	const query = `
		INSERT INTO city_goods (city_id, good_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, cityID, goodID); err != nil {
		return fmt.Errorf("failed to link city and good: %w", err)
	}
	return nil
}
