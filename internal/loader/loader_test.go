package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"crayon-rails/internal/pkg/db/dbtest"
)

const sampleWorld = `
name: world
cities:
  Springfield:
    - coal
    - corn
  Shelbyville:
    - coal
cards:
  - number: 7
    contracts:
      - [coal, Springfield, 25]
      - [corn, Springfield, 10]
  - event: Derailment!
  - contracts:
      - [coal, Shelbyville, 30]
`

func writeWorldFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParse(t *testing.T) {
	wf, err := Parse(writeWorldFile(t, sampleWorld))
	require.NoError(t, err)

	assert.Equal(t, "world", wf.Name)
	assert.Len(t, wf.Cities, 2)
	assert.Equal(t, []string{"coal", "corn"}, wf.Cities["Springfield"])
	require.Len(t, wf.Cards, 3)

	require.NotNil(t, wf.Cards[0].Number)
	assert.Equal(t, int64(7), *wf.Cards[0].Number)
	require.Len(t, wf.Cards[0].Contracts, 2)
	assert.Equal(t, ContractFile{Good: "coal", City: "Springfield", Amount: 25}, wf.Cards[0].Contracts[0])

	assert.Equal(t, "Derailment!", wf.Cards[1].Event)
	assert.Nil(t, wf.Cards[1].Number)

	assert.Nil(t, wf.Cards[2].Number)
	require.Len(t, wf.Cards[2].Contracts, 1)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(writeWorldFile(t, "cities: {}"))
	assert.ErrorContains(t, err, "no name")

	_, err = Parse(writeWorldFile(t, "name: w\ncards:\n  - contracts:\n      - [coal, Springfield]\n"))
	assert.ErrorContains(t, err, "exactly 3 elements")

	_, err = Parse(writeWorldFile(t, "name: w\ncards:\n  - contracts:\n      - just-a-string\n"))
	assert.Error(t, err)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestContractFileRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		good := rapid.StringMatching(`[a-z]{1,12}`).Draw(t, "good")
		city := rapid.StringMatching(`[A-Z][a-z]{1,12}`).Draw(t, "city")
		amount := rapid.Int64().Draw(t, "amount")

		raw, err := yaml.Marshal([]any{good, city, amount})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var cf ContractFile
		if err := yaml.Unmarshal(raw, &cf); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if cf.Good != good || cf.City != city || cf.Amount != amount {
			t.Fatalf("round trip mismatch: got %+v", cf)
		}
	})
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestLoad_Idempotent(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	wf, err := Parse(writeWorldFile(t, sampleWorld))
	require.NoError(t, err)

	require.NoError(t, Load(ctx, pool, wf))
	require.NoError(t, Load(ctx, pool, wf))

	assert.Equal(t, 1, countRows(t, pool, "worlds"))
	assert.Equal(t, 2, countRows(t, pool, "cities"))
	assert.Equal(t, 2, countRows(t, pool, "goods"))
	assert.Equal(t, 3, countRows(t, pool, "cards"))
	assert.Equal(t, 3, countRows(t, pool, "contracts"))
	assert.Equal(t, 3, countRows(t, pool, "card_contracts"))
	assert.Equal(t, 3, countRows(t, pool, "city_goods"))
}

func TestLoad_ReimportUpdatesInPlace(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	wf, err := Parse(writeWorldFile(t, sampleWorld))
	require.NoError(t, err)
	require.NoError(t, Load(ctx, pool, wf))

	// Amounts and event text follow the file on re-import.
	wf.Cards[0].Contracts[0].Amount = 99
	wf.Cards[1].Event = "Bridge out!"
	require.NoError(t, Load(ctx, pool, wf))

	var amount int64
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT co.amount FROM contracts co
		JOIN goods g ON g.id = co.good_id
		JOIN cities ci ON ci.id = co.city_id
		WHERE g.name = 'coal' AND ci.name = 'Springfield'
	`).Scan(&amount))
	assert.Equal(t, int64(99), amount)

	var event string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT event FROM cards WHERE number = 1`).Scan(&event))
	assert.Equal(t, "Bridge out!", event)

	assert.Equal(t, 3, countRows(t, pool, "cards"))
}

func TestLoad_MissingGoodAbortsWholeImport(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	const broken = `
name: world
cities:
  Springfield:
    - coal
cards:
  - contracts:
      - [uranium, Springfield, 100]
`
	wf, err := Parse(writeWorldFile(t, broken))
	require.NoError(t, err)

	err = Load(ctx, pool, wf)
	require.Error(t, err)
	assert.ErrorContains(t, err, `good "uranium" does not exist`)

	// Nothing from the failed import is committed, not even the world.
	assert.Equal(t, 0, countRows(t, pool, "worlds"))
	assert.Equal(t, 0, countRows(t, pool, "cities"))
	assert.Equal(t, 0, countRows(t, pool, "cards"))
}

func TestLoad_MissingCityAbortsWholeImport(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	const broken = `
name: world
cities:
  Springfield:
    - coal
cards:
  - contracts:
      - [coal, Atlantis, 100]
`
	wf, err := Parse(writeWorldFile(t, broken))
	require.NoError(t, err)

	err = Load(ctx, pool, wf)
	require.Error(t, err)
	assert.ErrorContains(t, err, `city "Atlantis" does not exist`)
	assert.Equal(t, 0, countRows(t, pool, "worlds"))
}
