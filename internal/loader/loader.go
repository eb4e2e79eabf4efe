// Package loader imports YAML world definitions into the database.
//
// A world file looks like:
//
//	name: Alpha Centauri
//	cities:
//	  Armstrong City: [ice, regolith]
//	cards:
//	  - number: 7
//	    contracts:
//	      - [ice, Armstrong City, 25]
//	  - event: Solar flare!
//
// Imports are idempotent: entities are matched by natural key and updated in
// place. Referencing a good or city that the file (or a previous import) did
// not declare aborts the whole import; nothing is committed partially.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"crayon-rails/internal/repository"
)

// WorldFile is the on-disk world definition.
type WorldFile struct {
	Name   string              `yaml:"name"`
	Cities map[string][]string `yaml:"cities"`
	Cards  []CardFile          `yaml:"cards"`
}

// CardFile is one card entry. Number defaults to the card's position in the
// file when omitted.
type CardFile struct {
	Number    *int64         `yaml:"number"`
	Event     string         `yaml:"event"`
	Contracts []ContractFile `yaml:"contracts"`
}

// ContractFile is a [good, city, amount] tuple.
type ContractFile struct {
	Good   string
	City   string
	Amount int64
}

// UnmarshalYAML decodes the three-element tuple form.
func (c *ContractFile) UnmarshalYAML(value *yaml.Node) error {
	var tuple []yaml.Node
	if err := value.Decode(&tuple); err != nil {
		return fmt.Errorf("contract must be a [good, city, amount] list: %w", err)
	}
	if len(tuple) != 3 {
		return fmt.Errorf("contract must have exactly 3 elements, got %d", len(tuple))
	}
	if err := tuple[0].Decode(&c.Good); err != nil {
		return fmt.Errorf("contract good: %w", err)
	}
	if err := tuple[1].Decode(&c.City); err != nil {
		return fmt.Errorf("contract city: %w", err)
	}
	if err := tuple[2].Decode(&c.Amount); err != nil {
		return fmt.Errorf("contract amount: %w", err)
	}
	return nil
}

// Parse reads and decodes a world file.
func Parse(path string) (*WorldFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	var wf WorldFile
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse world file: %w", err)
	}
	if wf.Name == "" {
		return nil, fmt.Errorf("world file has no name")
	}
	return &wf, nil
}

// Load imports a parsed world file in a single transaction.
func Load(ctx context.Context, pool *pgxpool.Pool, wf *WorldFile) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := load(ctx, tx, wf); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Info().Str("world", wf.Name).
		Int("cities", len(wf.Cities)).
		Int("cards", len(wf.Cards)).
		Msg("World imported")
	return nil
}

func load(ctx context.Context, q repository.DBTX, wf *WorldFile) error {
	worlds := repository.NewWorldRepository(q)
	cards := repository.NewCardRepository(q)

	world, err := worlds.UpsertByName(ctx, wf.Name)
	if err != nil {
		return err
	}

	for cityName, produces := range wf.Cities {
		city, err := worlds.UpsertCity(ctx, world.ID, cityName)
		if err != nil {
			return err
		}
		for _, goodName := range produces {
			good, err := worlds.UpsertGood(ctx, goodName)
			if err != nil {
				return err
			}
			if err := worlds.LinkCityGood(ctx, city.ID, good.ID); err != nil {
				return err
			}
		}
	}

	for i, cf := range wf.Cards {
		number := int64(i)
		if cf.Number != nil {
			number = *cf.Number
		}

		var event *string
		if cf.Event != "" {
			event = &cf.Event
		}

		card, err := cards.UpsertCard(ctx, world.ID, number, event)
		if err != nil {
			return err
		}

		for _, tf := range cf.Contracts {
			good, ok, err := worlds.FindGood(ctx, tf.Good)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("good %q does not exist", tf.Good)
			}

			city, ok, err := worlds.FindCity(ctx, world.ID, tf.City)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("city %q does not exist", tf.City)
			}

			contract, err := cards.UpsertContract(ctx, good.ID, city.ID, tf.Amount)
			if err != nil {
				return err
			}
			if err := cards.LinkCardContract(ctx, card.ID, contract.ID); err != nil {
				return err
			}
		}
	}

	return nil
}
