// Package repository provides data access layer implementations.
//
// Every repository is built over the DBTX querier, satisfied by both
// *pgxpool.Pool and pgx.Tx, so the same code serves pool-level reads and
// operations staged inside a caller-owned transaction.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrWorldNotFound    = errors.New("world not found")
	ErrCardNotFound     = errors.New("card not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrSessionNotFound  = errors.New("session not found")

	// ErrDuplicatePlayer reports more than one player row sharing a name, which
	// the unique index should make impossible. It is an integrity failure, not
	// a user error.
	ErrDuplicatePlayer = errors.New("duplicate player name")
)

// DBTX is the querier shared by pool and transaction access.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
