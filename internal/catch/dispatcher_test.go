package catch

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idlepond/internal/catalog"
	"idlepond/internal/config"
	"idlepond/internal/sampler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lakeCatalog() *catalog.Store {
	return catalog.New(
		[]catalog.Fish{{Name: "Carp", Rarity: catalog.Common, Pond: "Lake", MinWeight: 1.0, MaxWeight: 5.0, Price: 10, Exp: 5}},
		nil, nil, quietLogger(),
	)
}

func TestDispatcher_CarpOnlyLake(t *testing.T) {
	d := NewDispatcher(lakeCatalog(), sampler.NewSeeded(2024), config.Default(), quietLogger())

	const attempts = 10_000
	caught := 0
	for i := 0; i < attempts; i++ {
		c, err := d.RandomCatch("Lake")
		if err != nil {
			require.True(t, errors.Is(err, ErrNoSelection), "unexpected error: %v", err)
			assert.Nil(t, c)
			continue
		}
		caught++
		fish, ok := c.(*FishCatch)
		require.True(t, ok, "only fish live in the lake, got %T", c)
		assert.Equal(t, "Carp", fish.Name)
		assert.GreaterOrEqual(t, fish.Weight, 1.0)
		assert.LessOrEqual(t, fish.Weight, 5.0)
		assert.GreaterOrEqual(t, fish.Price, 10)
		assert.Equal(t, CategoryFish, fish.Category())
	}

	// fish odds 0.6 times common weight 10/20.1
	rate := float64(caught) / attempts
	assert.InDelta(t, 0.6*10/20.1, rate, 0.03)
}

func TestDispatcher_PondOddsOverride(t *testing.T) {
	cat := catalog.New(
		nil,
		[]catalog.Garbage{{Name: "Boot", Pond: "Lake", Price: 1}, {Name: "Can", Pond: "Lake", Price: 1}},
		nil, quietLogger(),
	)
	bal := config.Default()
	bal.PondOdds["Lake"] = config.Odds{Garbage: 1}

	d := NewDispatcher(cat, sampler.NewSeeded(1), bal, quietLogger())
	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		c, err := d.RandomCatch("Lake")
		require.NoError(t, err)
		g, ok := c.(*GarbageCatch)
		require.True(t, ok)
		assert.Equal(t, 1, g.Quantity)
		seen[g.Name]++
	}
	assert.Len(t, seen, 2, "uniform pick should reach both items")
}

func TestDispatcher_TreasureFiltersByRarity(t *testing.T) {
	cat := catalog.New(nil, nil, []catalog.Treasure{
		{Name: "Coin", Pond: "Lake", Rarity: catalog.Common, Price: 5},
		{Name: "Crown", Pond: "Lake", Rarity: catalog.Mythic, Price: 5000},
	}, quietLogger())
	bal := config.Default()
	bal.PondOdds["Lake"] = config.Odds{Treasure: 1}
	bal.RarityWeights = []float64{0, 0, 0, 0, 1}

	d := NewDispatcher(cat, sampler.NewSeeded(8), bal, quietLogger())
	for i := 0; i < 100; i++ {
		c, err := d.RandomCatch("Lake")
		require.NoError(t, err)
		tr := c.(*TreasureCatch)
		assert.Equal(t, "Crown", tr.Name)
		assert.Equal(t, catalog.Mythic, tr.Rarity)
	}
}

func TestDispatcher_EmptyPond(t *testing.T) {
	d := NewDispatcher(lakeCatalog(), sampler.NewSeeded(3), config.Default(), quietLogger())
	for i := 0; i < 200; i++ {
		c, err := d.RandomCatch("Nowhere")
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrNoSelection)
	}
}

func TestDispatcher_ConfigurationErrors(t *testing.T) {
	bal := config.Default()
	bal.PondOdds["Lake"] = config.Odds{Fish: 1}
	bal.RarityWeights = []float64{1, 1}

	d := NewDispatcher(lakeCatalog(), sampler.NewSeeded(3), bal, quietLogger())
	_, err := d.RandomCatch("Lake")
	assert.ErrorIs(t, err, sampler.ErrArity)

	bal = config.Default()
	bal.PondOdds["Dead Sea"] = config.Odds{}
	d = NewDispatcher(lakeCatalog(), sampler.NewSeeded(3), bal, quietLogger())
	_, err = d.RandomCatch("Dead Sea")
	assert.ErrorIs(t, err, sampler.ErrNonPositiveSum)
}
