package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
)

// CreateGame creates a new game bound to the world and joins the acting
// player to it.
func (s *Service) CreateGame(ctx context.Context, playerID, worldID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		world, err := repository.NewWorldRepository(q).GetByID(ctx, worldID)
		if err != nil {
			return nil, err
		}

		game, err := repository.NewGameRepository(q).Create(ctx, world.ID)
		if err != nil {
			return nil, err
		}

		if err := repository.NewPlayerRepository(q).SetGame(ctx, playerID, &game.ID); err != nil {
			return nil, err
		}

		log.Info().Int64("player_id", playerID).Int64("game_id", game.ID).
			Str("world", world.Name).Msg("Game created")

		return project(ctx, q, playerID)
	})
}

// JoinGame sets the player's current game. Joining the game you are already
// in is a no-op. There is no capacity limit.
func (s *Service) JoinGame(ctx context.Context, playerID, gameID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		game, err := repository.NewGameRepository(q).GetByID(ctx, gameID)
		if err != nil {
			return nil, err
		}

		if err := repository.NewPlayerRepository(q).SetGame(ctx, playerID, &game.ID); err != nil {
			return nil, err
		}

		return project(ctx, q, playerID)
	})
}

// LeaveGame clears the player's current game. Leaving while not in a game
// succeeds silently.
func (s *Service) LeaveGame(ctx context.Context, playerID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		if err := repository.NewPlayerRepository(q).SetGame(ctx, playerID, nil); err != nil {
			return nil, err
		}
		return project(ctx, q, playerID)
	})
}

// GainMoney credits amount to the player's balance. The amount may be
// negative or zero; the balance has no bounds.
func (s *Service) GainMoney(ctx context.Context, playerID, amount int64) (*model.StateView, error) {
	return s.adjustMoney(ctx, playerID, amount, model.LedgerGain)
}

// SpendMoney debits amount from the player's balance. Spending is gaining
// the negated amount.
func (s *Service) SpendMoney(ctx context.Context, playerID, amount int64) (*model.StateView, error) {
	return s.adjustMoney(ctx, playerID, -amount, model.LedgerSpend)
}

func (s *Service) adjustMoney(ctx context.Context, playerID, delta int64, kind string) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		if _, err := repository.NewPlayerRepository(q).AdjustMoney(ctx, playerID, delta); err != nil {
			return nil, err
		}
		if err := repository.NewLedgerRepository(q).Record(ctx, playerID, delta, kind); err != nil {
			return nil, err
		}
		return project(ctx, q, playerID)
	})
}

// Draw draws one card from the player's game deck into the player's hand.
// The deck mutation and the hand update commit as one unit.
func (s *Service) Draw(ctx context.Context, playerID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		players := repository.NewPlayerRepository(q)

		player, err := players.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if player.GameID == nil {
			return nil, ErrNotInGame
		}

		game, err := repository.NewGameRepository(q).GetByID(ctx, *player.GameID)
		if err != nil {
			return nil, err
		}

		card, err := s.engine.Draw(ctx, q, game)
		if err != nil {
			return nil, err
		}

		if err := players.AddCard(ctx, player.ID, card.ID); err != nil {
			return nil, err
		}

		log.Debug().Int64("player_id", player.ID).Int64("game_id", game.ID).
			Int64("card_id", card.ID).Msg("Card drawn")

		return project(ctx, q, player.ID)
	})
}

// Discard removes a card from the player's hand. Discarding a card not held,
// or a nonexistent card id, leaves state unchanged and is not an error.
func (s *Service) Discard(ctx context.Context, playerID, cardID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		players := repository.NewPlayerRepository(q)

		player, err := players.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if player.GameID == nil {
			return nil, ErrNotInGame
		}

		_, err = repository.NewCardRepository(q).GetByID(ctx, cardID)
		switch {
		case errors.Is(err, repository.ErrCardNotFound):
			// Unknown card: already in the desired end state.
		case err != nil:
			return nil, err
		default:
			if _, err := players.RemoveCard(ctx, player.ID, cardID); err != nil {
				return nil, err
			}
		}

		return project(ctx, q, player.ID)
	})
}

// Complete fulfills a contract: for every card carrying the contract that
// the player holds, the contract's amount is credited and the card leaves
// the hand. A contract held via no card is a no-op; an unknown contract id
// is a bad request.
func (s *Service) Complete(ctx context.Context, playerID, contractID int64) (*model.StateView, error) {
	return s.inTx(ctx, func(q repository.DBTX) (*model.StateView, error) {
		players := repository.NewPlayerRepository(q)
		cards := repository.NewCardRepository(q)

		player, err := players.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if player.GameID == nil {
			return nil, ErrNotInGame
		}

		contract, err := cards.GetContract(ctx, contractID)
		if err != nil {
			return nil, err
		}

		held, err := cards.HeldCardsWithContract(ctx, contract.ID, player.ID)
		if err != nil {
			return nil, err
		}

		ledger := repository.NewLedgerRepository(q)
		for _, cardID := range held {
			if _, err := players.AdjustMoney(ctx, player.ID, contract.Amount); err != nil {
				return nil, err
			}
			if err := ledger.Record(ctx, player.ID, contract.Amount, model.LedgerContract); err != nil {
				return nil, err
			}
			if _, err := players.RemoveCard(ctx, player.ID, cardID); err != nil {
				return nil, err
			}
		}

		if len(held) > 0 {
			log.Info().Int64("player_id", player.ID).Int64("contract_id", contract.ID).
				Int("cards", len(held)).Int64("amount", contract.Amount).
				Msg("Contract completed")
		}

		return project(ctx, q, player.ID)
	})
}
