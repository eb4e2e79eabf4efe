package repository

import (
	"context"
	"fmt"

	"crayon-rails/internal/model"
)

// DeckRepository handles the per-game played-card ledger that backs the
// deck's shuffle epochs.
type DeckRepository struct {
	q DBTX
}

// NewDeckRepository creates a new DeckRepository instance.
func NewDeckRepository(q DBTX) *DeckRepository {
	return &DeckRepository{q: q}
}

// Undrawn retrieves the cards of a world not yet marked played in the game's
// current epoch, ordered by card id.
func (r *DeckRepository) Undrawn(ctx context.Context, worldID, gameID int64) ([]*model.Card, error) {
	const query = `
		SELECT c.id, c.world_id, c.number, c.event
		FROM cards c
		WHERE c.world_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM played_cards pc
			WHERE pc.game_id = $2 AND pc.card_id = c.id
		  )
		ORDER BY c.id
	`

	rows, err := r.q.Query(ctx, query, worldID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list undrawn cards: %w", err)
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
		return nil, fmt.Errorf("error iterating undrawn cards: %w", err)
	}

	return cards, nil
}

// MarkPlayed records a card as drawn in the game's current epoch.
func (r *DeckRepository) MarkPlayed(ctx context.Context, gameID, cardID int64) error {
	const query = `
		INSERT INTO played_cards (game_id, card_id)
		VALUES ($1, $2)
	`

	if _, err := r.q.Exec(ctx, query, gameID, cardID); err != nil {
		return fmt.Errorf("failed to mark card played: %w", err)
	}
	return nil
}

// ClearPlayed truncates the game's ledger, starting a new shuffle epoch.
func (r *DeckRepository) ClearPlayed(ctx context.Context, gameID int64) error {
	const query = `DELETE FROM played_cards WHERE game_id = $1`

	if _, err := r.q.Exec(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to clear played cards: %w", err)
	}
	return nil
}

// PlayedCount returns the size of the game's current-epoch ledger.
func (r *DeckRepository) PlayedCount(ctx context.Context, gameID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM played_cards WHERE game_id = $1`

	var n int
	if err := r.q.QueryRow(ctx, query, gameID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count played cards: %w", err)
	}
	return n, nil
}
