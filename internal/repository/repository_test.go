package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crayon-rails/internal/model"
	"crayon-rails/internal/pkg/db/dbtest"
)

// seedWorld creates a world with n event cards and returns it with the cards.
func seedWorld(t *testing.T, pool *pgxpool.Pool, name string, n int) (*model.World, []*model.Card) {
	t.Helper()
	ctx := context.Background()

	world, err := NewWorldRepository(pool).UpsertByName(ctx, name)
	require.NoError(t, err)

	cards := NewCardRepository(pool)
	var out []*model.Card
	for i := 0; i < n; i++ {
		event := "event"
		card, err := cards.UpsertCard(ctx, world.ID, int64(i), &event)
		require.NoError(t, err)
		out = append(out, card)
	}
	return world, out
}

func TestPlayerRepository_CreateAndFind(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	players := NewPlayerRepository(pool)

	_, err := players.FindByName(ctx, "me")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	created, err := players.Create(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, "me", created.Name)
	assert.Equal(t, int64(0), created.Money)
	assert.Nil(t, created.GameID)

	found, err := players.FindByName(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	got, err := players.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "me", got.Name)

	_, err = players.GetByID(ctx, created.ID+999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_NameUniqueIndex(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	players := NewPlayerRepository(pool)

	_, err := players.Create(ctx, "me")
	require.NoError(t, err)

	// The unique index is the backstop for the get-or-create race.
	_, err = players.Create(ctx, "me")
	assert.Error(t, err)
}

func TestPlayerRepository_AdjustMoney(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	players := NewPlayerRepository(pool)

	player, err := players.Create(ctx, "me")
	require.NoError(t, err)

	player, err = players.AdjustMoney(ctx, player.ID, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(120), player.Money)

	// No floor: balances go negative.
	player, err = players.AdjustMoney(ctx, player.ID, -200)
	require.NoError(t, err)
	assert.Equal(t, int64(-80), player.Money)

	_, err = players.AdjustMoney(ctx, player.ID+999, 1)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_Hand(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	players := NewPlayerRepository(pool)

	_, cards := seedWorld(t, pool, "world", 2)
	player, err := players.Create(ctx, "me")
	require.NoError(t, err)

	hand, err := players.Hand(ctx, player.ID)
	require.NoError(t, err)
	assert.Empty(t, hand)

	require.NoError(t, players.AddCard(ctx, player.ID, cards[0].ID))
	require.NoError(t, players.AddCard(ctx, player.ID, cards[1].ID))

	held, err := players.HoldsCard(ctx, player.ID, cards[0].ID)
	require.NoError(t, err)
	assert.True(t, held)

	hand, err = players.Hand(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, hand, 2)
	assert.Equal(t, cards[0].ID, hand[0].ID)
	assert.Equal(t, cards[1].ID, hand[1].ID)

	removed, err := players.RemoveCard(ctx, player.ID, cards[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// Removing again is a silent no-op.
	removed, err = players.RemoveCard(ctx, player.ID, cards[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)

	hand, err = players.Hand(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, hand, 1)
	assert.Equal(t, cards[1].ID, hand[0].ID)
}

func TestGameRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	games := NewGameRepository(pool)

	world, _ := seedWorld(t, pool, "world", 0)

	game, err := games.Create(ctx, world.ID)
	require.NoError(t, err)
	assert.Equal(t, world.ID, game.WorldID)
	assert.Equal(t, "world", game.WorldName)

	got, err := games.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)

	_, err = games.GetByID(ctx, game.ID+999)
	assert.ErrorIs(t, err, ErrGameNotFound)

	second, err := games.Create(ctx, world.ID)
	require.NoError(t, err)

	all, err := games.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, game.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestPlayerRepository_SetGameAndMembers(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	players := NewPlayerRepository(pool)

	world, _ := seedWorld(t, pool, "world", 0)
	game, err := NewGameRepository(pool).Create(ctx, world.ID)
	require.NoError(t, err)

	me, err := players.Create(ctx, "me")
	require.NoError(t, err)
	you, err := players.Create(ctx, "you")
	require.NoError(t, err)

	require.NoError(t, players.SetGame(ctx, me.ID, &game.ID))
	require.NoError(t, players.SetGame(ctx, you.ID, &game.ID))

	members, err := players.NamesByGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"me", "you"}, members[game.ID])

	require.NoError(t, players.SetGame(ctx, you.ID, nil))
	got, err := players.GetByID(ctx, you.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GameID)
}

func TestDeckRepository_Ledger(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	decks := NewDeckRepository(pool)

	world, cards := seedWorld(t, pool, "world", 3)
	game, err := NewGameRepository(pool).Create(ctx, world.ID)
	require.NoError(t, err)

	undrawn, err := decks.Undrawn(ctx, world.ID, game.ID)
	require.NoError(t, err)
	assert.Len(t, undrawn, 3)

	require.NoError(t, decks.MarkPlayed(ctx, game.ID, cards[1].ID))

	undrawn, err = decks.Undrawn(ctx, world.ID, game.ID)
	require.NoError(t, err)
	require.Len(t, undrawn, 2)
	assert.Equal(t, cards[0].ID, undrawn[0].ID)
	assert.Equal(t, cards[2].ID, undrawn[1].ID)

	n, err := decks.PlayedCount(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A second game has an independent ledger.
	other, err := NewGameRepository(pool).Create(ctx, world.ID)
	require.NoError(t, err)
	undrawn, err = decks.Undrawn(ctx, world.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, undrawn, 3)

	require.NoError(t, decks.ClearPlayed(ctx, game.ID))
	undrawn, err = decks.Undrawn(ctx, world.ID, game.ID)
	require.NoError(t, err)
	assert.Len(t, undrawn, 3)
}

func TestSessionRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	sessions := NewSessionRepository(pool)

	player, err := NewPlayerRepository(pool).Create(ctx, "me")
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, "tok", player.ID))

	got, err := sessions.PlayerID(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, player.ID, got)

	_, err = sessions.PlayerID(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, sessions.Delete(ctx, "tok"))
	_, err = sessions.PlayerID(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting an unknown token is fine.
	require.NoError(t, sessions.Delete(ctx, "tok"))
}

func TestCardRepository_ContractWiring(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	worlds := NewWorldRepository(pool)
	cards := NewCardRepository(pool)

	world, err := worlds.UpsertByName(ctx, "world")
	require.NoError(t, err)
	city, err := worlds.UpsertCity(ctx, world.ID, "Springfield")
	require.NoError(t, err)
	good, err := worlds.UpsertGood(ctx, "coal")
	require.NoError(t, err)
	require.NoError(t, worlds.LinkCityGood(ctx, city.ID, good.ID))

	card, err := cards.UpsertCard(ctx, world.ID, 1, nil)
	require.NoError(t, err)

	contract, err := cards.UpsertContract(ctx, good.ID, city.ID, 40)
	require.NoError(t, err)
	require.NoError(t, cards.LinkCardContract(ctx, card.ID, contract.ID))

	// Upserting again by natural key updates the amount in place.
	again, err := cards.UpsertContract(ctx, good.ID, city.ID, 55)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, again.ID)
	assert.Equal(t, int64(55), again.Amount)

	views, err := cards.ContractsForCards(ctx, []int64{card.ID})
	require.NoError(t, err)
	require.Len(t, views[card.ID], 1)
	assert.Equal(t, model.ContractView{
		ID: contract.ID, Good: "coal", City: "Springfield", Amount: 55,
	}, views[card.ID][0])

	player, err := NewPlayerRepository(pool).Create(ctx, "me")
	require.NoError(t, err)

	held, err := cards.HeldCardsWithContract(ctx, contract.ID, player.ID)
	require.NoError(t, err)
	assert.Empty(t, held)

	require.NoError(t, NewPlayerRepository(pool).AddCard(ctx, player.ID, card.ID))
	held, err = cards.HeldCardsWithContract(ctx, contract.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{card.ID}, held)
}

func TestLedgerRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	player, err := NewPlayerRepository(pool).Create(ctx, "me")
	require.NoError(t, err)

	require.NoError(t, ledger.Record(ctx, player.ID, 100, model.LedgerGain))
	require.NoError(t, ledger.Record(ctx, player.ID, -30, model.LedgerSpend))

	entries, err := ledger.ByPlayer(ctx, player.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-30), entries[0].Amount)
	assert.Equal(t, model.LedgerSpend, entries[0].Kind)
	assert.Equal(t, int64(100), entries[1].Amount)
}
