package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crayon-rails/internal/model"
)

// CardRepository handles card and contract persistence.
type CardRepository struct {
	q DBTX
}

// NewCardRepository creates a new CardRepository instance.
func NewCardRepository(q DBTX) *CardRepository {
	return &CardRepository{q: q}
}

// GetByID retrieves a card by id.
// Returns ErrCardNotFound if the card does not exist.
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*model.Card, error) {
	const query = `SELECT id, world_id, number, event FROM cards WHERE id = $1`

	var c model.Card
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.WorldID, &c.Number, &c.Event)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

// UpsertCard retrieves a world's card by printed number, creating it if
// absent, and overwrites its event text. Cards are keyed by (world, number)
// so re-importing a world updates cards in place.
func (r *CardRepository) UpsertCard(ctx context.Context, worldID, number int64, event *string) (*model.Card, error) {
	const query = `
		INSERT INTO cards (world_id, number, event)
		VALUES ($1, $2, $3)
		ON CONFLICT (world_id, number) DO UPDATE SET event = EXCLUDED.event
		RETURNING id, world_id, number, event
	`

	var c model.Card
	err := r.q.QueryRow(ctx, query, worldID, number, event).Scan(&c.ID, &c.WorldID, &c.Number, &c.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert card: %w", err)
	}
	return &c, nil
}

// GetContract retrieves a contract by id.
// Returns ErrContractNotFound if the contract does not exist.
func (r *CardRepository) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	const query = `SELECT id, good_id, city_id, amount FROM contracts WHERE id = $1`

	var c model.Contract
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.GoodID, &c.CityID, &c.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &c, nil
}

// UpsertContract retrieves the contract for a (good, city) pair, creating it
// if absent, and overwrites its amount.
func (r *CardRepository) UpsertContract(ctx context.Context, goodID, cityID, amount int64) (*model.Contract, error) {
	const query = `
		INSERT INTO contracts (good_id, city_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (good_id, city_id) DO UPDATE SET amount = EXCLUDED.amount
		RETURNING id, good_id, city_id, amount
	`

	var c model.Contract
	err := r.q.QueryRow(ctx, query, goodID, cityID, amount).Scan(&c.ID, &c.GoodID, &c.CityID, &c.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contract: %w", err)
	}
	return &c, nil
}

// LinkCardContract attaches a contract to a card. Idempotent.
func (r *CardRepository) LinkCardContract(ctx context.Context, cardID, contractID int64) error {
	const query = `
		INSERT INTO card_contracts (card_id, contract_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, cardID, contractID); err != nil {
		return fmt.Errorf("failed to link card and contract: %w", err)
	}
	return nil
}

// HeldCardsWithContract retrieves the ids of cards that carry the contract
// and are currently in the player's hand, ordered by card id.
func (r *CardRepository) HeldCardsWithContract(ctx context.Context, contractID, playerID int64) ([]int64, error) {
	const query = `
		SELECT cc.card_id
		FROM card_contracts cc
		JOIN player_cards pc ON pc.card_id = cc.card_id
		WHERE cc.contract_id = $1 AND pc.player_id = $2
		ORDER BY cc.card_id
	`

	rows, err := r.q.Query(ctx, query, contractID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find held contract cards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contract cards: %w", err)
	}

	return ids, nil
}

// ContractsForCards retrieves the rendered contracts attached to any of the
// given cards, keyed by card id. Good and city names are resolved for the
// read-model.
func (r *CardRepository) ContractsForCards(ctx context.Context, cardIDs []int64) (map[int64][]model.ContractView, error) {
	if len(cardIDs) == 0 {
		return map[int64][]model.ContractView{}, nil
	}

	const query = `
		SELECT cc.card_id, co.id, g.name, ci.name, co.amount
		FROM card_contracts cc
		JOIN contracts co ON co.id = cc.contract_id
		JOIN goods g ON g.id = co.good_id
		JOIN cities ci ON ci.id = co.city_id
		WHERE cc.card_id = ANY($1)
		ORDER BY cc.card_id, co.id
	`

	rows, err := r.q.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get card contracts: %w", err)
	}
	defer rows.Close()

	contracts := make(map[int64][]model.ContractView)
	for rows.Next() {
		var cardID int64
		var cv model.ContractView
		if err := rows.Scan(&cardID, &cv.ID, &cv.Good, &cv.City, &cv.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts[cardID] = append(contracts[cardID], cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}
