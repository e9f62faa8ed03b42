package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesBalancePresets(t *testing.T) {
	c, err := LoadDefaults()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	d := Default()
	assert.Equal(t, d.StackLimit, c.Balance.StackLimit)
	assert.Equal(t, d.CatchIntervalSeconds, c.Balance.CatchIntervalSeconds)
	assert.Equal(t, d.DefaultOdds, c.Balance.DefaultOdds)
	assert.Equal(t, d.RarityWeights, c.Balance.RarityWeights)
	assert.Equal(t, d.QualityWeights, c.Balance.QualityWeights)
	assert.Equal(t, d.PondOdds[NeighborPond], c.Balance.PondOdds[NeighborPond])
	assert.Equal(t, DriverFile, c.Storage.Driver)
	assert.Equal(t, "Village Pond", c.Player.DefaultPond)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idlepond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
balance:
  catch_interval_seconds: 10
  pond_price_multipliers:
    "Frozen Lake": 3
storage:
  driver: sqlite
  data_dir: /tmp/pond
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, c.Balance.CatchIntervalSeconds)
	assert.Equal(t, 8, c.Balance.StackLimit, "untouched keys keep their defaults")
	assert.Equal(t, 3.0, c.Balance.PriceMultiplier("Frozen Lake"))
	assert.Equal(t, 2.0, c.Balance.PriceMultiplier(MountainStream))
	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, filepath.Join("/tmp/pond", "idlepond.db"), c.Storage.SQLitePath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBalance_OddsAndMultiplier(t *testing.T) {
	b := Default()
	assert.Equal(t, Odds{Fish: 40, Garbage: 50, Treasure: 10}, b.OddsFor(NeighborPond))
	assert.Equal(t, Odds{Fish: 60, Garbage: 30, Treasure: 10}, b.OddsFor("Village Pond"))
	assert.Equal(t, []float64{60, 30, 10}, b.OddsFor("anywhere").Weights())
	assert.Equal(t, 1.0, b.PriceMultiplier("Village Pond"))
}

func TestBalance_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Balance)
	}{
		{"stack limit", func(b *Balance) { b.StackLimit = 0 }},
		{"interval", func(b *Balance) { b.CatchIntervalSeconds = -1 }},
		{"offline cap", func(b *Balance) { b.MaxOfflineCatches = -5 }},
		{"rarity arity", func(b *Balance) { b.RarityWeights = []float64{1, 2} }},
		{"quality arity", func(b *Balance) { b.QualityWeights = nil }},
		{"zero odds", func(b *Balance) { b.DefaultOdds = Odds{} }},
		{"negative pond odds", func(b *Balance) { b.PondOdds["x"] = Odds{Fish: -1, Garbage: 2} }},
		{"multiplier", func(b *Balance) { b.PondPriceMultipliers["x"] = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Default()
			tt.mutate(&b)
			assert.ErrorIs(t, b.Validate(), ErrInvalidBalance)
		})
	}

	assert.NoError(t, Casual().Validate())
	assert.NoError(t, Hard().Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("IDLEPOND_DIFFICULTY", "hard")
	t.Setenv("IDLEPOND_CATCH_INTERVAL", "3")
	t.Setenv("IDLEPOND_MAX_OFFLINE_CATCHES", "0")
	t.Setenv("IDLEPOND_DATA_DIR", "/var/lib/pond")
	t.Setenv("IDLEPOND_LOG_LEVEL", "debug")
	t.Setenv("IDLEPOND_ADMIN", "true")

	c, err := LoadDefaults()
	require.NoError(t, err)
	c.ApplyEnv()

	assert.Equal(t, 3, c.Balance.CatchIntervalSeconds)
	assert.Equal(t, 0, c.Balance.MaxOfflineCatches)
	assert.Equal(t, Hard().DefaultOdds, c.Balance.DefaultOdds)
	assert.Equal(t, "/var/lib/pond", c.Storage.DataDir)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Player.Admin)
}

func TestApplyEnv_DifficultyKeepsPondTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idlepond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
balance:
  pond_odds:
    "Frozen Lake":
      fish: 10
      garbage: 10
      treasure: 80
  pond_price_multipliers:
    "Frozen Lake": 3
`), 0o644))
	t.Setenv("IDLEPOND_DIFFICULTY", "casual")

	c, err := Load(path)
	require.NoError(t, err)
	c.ApplyEnv()

	assert.Equal(t, 2, c.Balance.CatchIntervalSeconds)
	assert.Equal(t, Casual().DefaultOdds, c.Balance.DefaultOdds)
	assert.Equal(t, Odds{Fish: 10, Garbage: 10, Treasure: 80}, c.Balance.OddsFor("Frozen Lake"))
	assert.Equal(t, 3.0, c.Balance.PriceMultiplier("Frozen Lake"))
}
