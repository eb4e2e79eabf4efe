package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SessionRepository handles login session persistence. A session is an
// opaque token mapped to a player id; the token is what the cookie carries.
type SessionRepository struct {
	q DBTX
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(q DBTX) *SessionRepository {
	return &SessionRepository{q: q}
}

// Create stores a session token for a player.
func (r *SessionRepository) Create(ctx context.Context, token string, playerID int64) error {
	const query = `
		INSERT INTO sessions (token, player_id, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := r.q.Exec(ctx, query, token, playerID); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// PlayerID resolves a session token to a player id.
// Returns ErrSessionNotFound for an unknown token.
func (r *SessionRepository) PlayerID(ctx context.Context, token string) (int64, error) {
	const query = `SELECT player_id FROM sessions WHERE token = $1`

	var playerID int64
	if err := r.q.QueryRow(ctx, query, token).Scan(&playerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}
	return playerID, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`

	if _, err := r.q.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
