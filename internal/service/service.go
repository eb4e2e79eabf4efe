// Package service implements the game lifecycle operations and the state
// projection that every operation returns.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"crayon-rails/internal/deck"
	"crayon-rails/internal/directory"
	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
)

// Common errors for lifecycle operations.
var (
	ErrNotInGame = errors.New("player is not in a game")
	ErrEmptyName = errors.New("name must not be empty")
)

// Service runs each operation in one transaction against the pool,
// committing once at the end, and returns the freshly projected state.
type Service struct {
	pool   *pgxpool.Pool
	engine *deck.Engine
}

// New creates a Service drawing cards with the given deck engine.
func New(pool *pgxpool.Pool, engine *deck.Engine) *Service {
	return &Service{pool: pool, engine: engine}
}

// inTx runs fn inside a single transaction and commits on success.
func (s *Service) inTx(ctx context.Context, fn func(q repository.DBTX) (*model.StateView, error)) (*model.StateView, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	view, err := fn(tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return view, nil
}

// newToken generates an opaque session token.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Login resolves the name to a player, creating one if absent, and issues a
// session token for it. Player creation and session issuance commit together.
func (s *Service) Login(ctx context.Context, name string) (string, *model.StateView, error) {
	if name == "" {
		return "", nil, ErrEmptyName
	}

	token, err := newToken()
	if err != nil {
		return "", nil, err
	}

	view, err := s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		player, err := directory.GetOrCreatePlayer(ctx, q, name)
		if err != nil {
			return nil, err
		}
		if err := repository.NewSessionRepository(q).Create(ctx, token, player.ID); err != nil {
			return nil, err
		}
		return project(ctx, q, player.ID)
	})
	if err != nil {
		return "", nil, err
	}
	return token, view, nil
}

// Logout discards the session. Unknown tokens log out successfully.
func (s *Service) Logout(ctx context.Context, token string) (*model.StateView, error) {
	if token != "" {
		if err := repository.NewSessionRepository(s.pool).Delete(ctx, token); err != nil {
			return nil, err
		}
	}
	return LoggedOutView(), nil
}

// ResolvePlayer maps a session token to the player it belongs to. A token
// whose player no longer resolves is treated the same as an unknown token.
func (s *Service) ResolvePlayer(ctx context.Context, token string) (*model.Player, error) {
	playerID, err := repository.NewSessionRepository(s.pool).PlayerID(ctx, token)
	if err != nil {
		return nil, err
	}
	return repository.NewPlayerRepository(s.pool).GetByID(ctx, playerID)
}

// State projects the current state for the player, or the logged-out view
// when player is nil. Read-only.
func (s *Service) State(ctx context.Context, player *model.Player) (*model.StateView, error) {
	if player == nil {
		return LoggedOutView(), nil
	}
	return project(ctx, s.pool, player.ID)
}
