package repository

import (
	"context"
	"fmt"

	"crayon-rails/internal/model"
)

// LedgerRepository records money mutations for audit. The balance itself
// lives on the player row; the ledger is append-only history.
type LedgerRepository struct {
	q DBTX
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(q DBTX) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Record appends one money mutation.
func (r *LedgerRepository) Record(ctx context.Context, playerID, amount int64, kind string) error {
	const query = `
		INSERT INTO money_ledger (player_id, amount, kind, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := r.q.Exec(ctx, query, playerID, amount, kind); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// ByPlayer retrieves a player's ledger entries, newest first.
func (r *LedgerRepository) ByPlayer(ctx context.Context, playerID int64, limit int) ([]*model.LedgerEntry, error) {
	const query = `
		SELECT id, player_id, amount, kind, created_at
		FROM money_ledger
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Amount, &e.Kind, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}
