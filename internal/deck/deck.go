// Package deck implements the per-game card deck with
// reshuffle-on-exhaustion semantics.
package deck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
)

// ErrNoCards reports a draw against a world with no cards at all. That is a
// data/configuration error, not an empty deck: an empty deck reshuffles.
var ErrNoCards = errors.New("world has no cards")

// Source supplies the randomness for card selection. *rand.Rand satisfies
// it; tests can substitute a deterministic source.
type Source interface {
	Intn(n int) int
}

// Engine draws cards for games. It stages its mutations on the caller's
// querier and never commits, so a draw composes with the hand update in one
// transaction.
type Engine struct {
	src Source
}

// NewEngine creates an Engine drawing with the given randomness source.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// NewDefaultEngine creates an Engine with a time-seeded source.
func NewDefaultEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Draw picks one card uniformly at random from the game's undrawn pool and
// marks it played. When the pool is exhausted the game's played-card ledger
// is cleared first, making the world's full card set eligible again.
func (e *Engine) Draw(ctx context.Context, q repository.DBTX, game *model.Game) (*model.Card, error) {
	decks := repository.NewDeckRepository(q)

	cards, err := decks.Undrawn(ctx, game.WorldID, game.ID)
	if err != nil {
		return nil, err
	}

	if len(cards) == 0 {
		// Reshuffle: the ledger is truncated, nothing is copied.
		if err := decks.ClearPlayed(ctx, game.ID); err != nil {
			return nil, err
		}
		cards, err = decks.Undrawn(ctx, game.WorldID, game.ID)
		if err != nil {
			return nil, err
		}
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: world %d", ErrNoCards, game.WorldID)
	}

	card := cards[e.src.Intn(len(cards))]
	if err := decks.MarkPlayed(ctx, game.ID, card.ID); err != nil {
		return nil, err
	}

	return card, nil
}
