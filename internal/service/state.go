package service

import (
	"context"

	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
)

// LoggedOutView is the projection for a request with no session.
func LoggedOutView() *model.StateView {
	return &model.StateView{}
}

// project builds the canonical read-model for the player from current data.
// It is recomputed fresh after every mutation, inside the same transaction,
// so the returned view always reflects the committed state.
func project(ctx context.Context, q repository.DBTX, playerID int64) (*model.StateView, error) {
	players := repository.NewPlayerRepository(q)

	player, err := players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	view := &model.StateView{
		PlayerID:   &player.ID,
		PlayerName: player.Name,
	}

	if player.GameID == nil {
		return projectLobby(ctx, q, view)
	}
	return projectInGame(ctx, q, view, player)
}

// projectLobby lists the joinable games and the worlds available for new
// ones. The lists are present even when empty.
func projectLobby(ctx context.Context, q repository.DBTX, view *model.StateView) (*model.StateView, error) {
	players := repository.NewPlayerRepository(q)

	games, err := repository.NewGameRepository(q).List(ctx)
	if err != nil {
		return nil, err
	}
	members, err := players.NamesByGame(ctx)
	if err != nil {
		return nil, err
	}

	gameViews := make([]model.GameView, 0, len(games))
	for _, g := range games {
		names := members[g.ID]
		if names == nil {
			names = []string{}
		}
		gameViews = append(gameViews, model.GameView{
			ID:      g.ID,
			World:   g.WorldName,
			Players: names,
		})
	}

	worlds, err := repository.NewWorldRepository(q).List(ctx)
	if err != nil {
		return nil, err
	}
	worldViews := make([]model.WorldView, 0, len(worlds))
	for _, w := range worlds {
		worldViews = append(worldViews, model.WorldView{ID: w.ID, Name: w.Name})
	}

	view.Games = &gameViews
	view.Worlds = &worldViews
	return view, nil
}

// projectInGame renders the world name, balance, and hand.
func projectInGame(ctx context.Context, q repository.DBTX, view *model.StateView, player *model.Player) (*model.StateView, error) {
	game, err := repository.NewGameRepository(q).GetByID(ctx, *player.GameID)
	if err != nil {
		return nil, err
	}
	view.Game = game.WorldName
	money := player.Money
	view.Money = &money

	hand, err := repository.NewPlayerRepository(q).Hand(ctx, player.ID)
	if err != nil {
		return nil, err
	}

	cardIDs := make([]int64, 0, len(hand))
	for _, c := range hand {
		cardIDs = append(cardIDs, c.ID)
	}
	contracts, err := repository.NewCardRepository(q).ContractsForCards(ctx, cardIDs)
	if err != nil {
		return nil, err
	}

	cardViews := make([]model.CardView, 0, len(hand))
	for _, c := range hand {
		cv := model.CardView{ID: c.ID, Number: c.Number}
		if c.Event != nil {
			cv.Event = *c.Event
		}
		cv.Contracts = contracts[c.ID]
		cardViews = append(cardViews, cv)
	}

	view.Cards = &cardViews
	return view, nil
}
