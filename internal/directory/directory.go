// Package directory resolves display names to persistent player identities.
package directory

import (
	"context"
	"errors"
	"fmt"

	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
)

// GetOrCreatePlayer resolves a display name to a player, creating one with
// zero money and no game if the name is unknown. It stages the insert on the
// caller's querier and never commits, so it composes with session issuance
// in one transaction.
//
// Two existing rows with the same name is a data-integrity failure and is
// returned as repository.ErrDuplicatePlayer rather than silently picking one.
func GetOrCreatePlayer(ctx context.Context, q repository.DBTX, name string) (*model.Player, error) {
	players := repository.NewPlayerRepository(q)

	player, err := players.FindByName(ctx, name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, err
	}

	player, err = players.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create player %q: %w", name, err)
	}
	return player, nil
}
