package config

import (
	"errors"
	"fmt"
)

var ErrInvalidBalance = errors.New("config: invalid balance")

// Odds weights the three catch categories for a pond.
type Odds struct {
	Fish     float64 `yaml:"fish" json:"fish"`
	Garbage  float64 `yaml:"garbage" json:"garbage"`
	Treasure float64 `yaml:"treasure" json:"treasure"`
}

// Weights returns the odds in sampler order: fish, garbage, treasure.
func (o Odds) Weights() []float64 {
	return []float64{o.Fish, o.Garbage, o.Treasure}
}

// Balance holds gameplay balance configuration
type Balance struct {
	// Inventory
	StackLimit int `yaml:"stack_limit" json:"stack_limit"`

	// Timing
	CatchIntervalSeconds int `yaml:"catch_interval_seconds" json:"catch_interval_seconds"`
	SessionMinutes       int `yaml:"session_minutes" json:"session_minutes"`
	MaxOfflineCatches    int `yaml:"max_offline_catches" json:"max_offline_catches"`

	// Catch odds
	DefaultOdds Odds            `yaml:"default_odds" json:"default_odds"`
	PondOdds    map[string]Odds `yaml:"pond_odds" json:"pond_odds"`

	// Rarity weights, Common..Mythic
	RarityWeights []float64 `yaml:"rarity_weights" json:"rarity_weights"`
	// Quality weights, Poor..Excellent
	QualityWeights []float64 `yaml:"quality_weights" json:"quality_weights"`

	PondPriceMultipliers map[string]float64 `yaml:"pond_price_multipliers" json:"pond_price_multipliers"`
}

const (
	NeighborPond   = "Neighbor's Pond"
	MountainStream = "Mountain Stream"
)

// Default returns the default balance configuration
func Default() Balance {
	return Balance{
		StackLimit:           8,
		CatchIntervalSeconds: 4,
		SessionMinutes:       25,
		MaxOfflineCatches:    5000,
		DefaultOdds:          Odds{Fish: 60, Garbage: 30, Treasure: 10},
		PondOdds: map[string]Odds{
			NeighborPond: {Fish: 40, Garbage: 50, Treasure: 10},
		},
		RarityWeights:  []float64{10, 6, 3, 1, 0.1},
		QualityWeights: []float64{2, 3, 5, 2, 1},
		PondPriceMultipliers: map[string]float64{
			MountainStream: 2,
		},
	}
}

// Casual returns faster catches with a bit more treasure
func Casual() Balance {
	cfg := Default()
	casual(&cfg)
	return cfg
}

// Hard returns slower catches and rarer treasure
func Hard() Balance {
	cfg := Default()
	hard(&cfg)
	return cfg
}

// presets change only their own fields, leaving pond tables alone.
var presets = map[string]func(*Balance){
	"casual": casual,
	"hard":   hard,
}

func casual(b *Balance) {
	b.CatchIntervalSeconds = 2
	b.DefaultOdds = Odds{Fish: 60, Garbage: 20, Treasure: 20}
	b.StackLimit = 16
}

func hard(b *Balance) {
	b.CatchIntervalSeconds = 8
	b.DefaultOdds = Odds{Fish: 55, Garbage: 40, Treasure: 5}
	b.MaxOfflineCatches = 1000
}

// OddsFor returns the pond override, or the default odds.
func (b Balance) OddsFor(pond string) Odds {
	if o, ok := b.PondOdds[pond]; ok {
		return o
	}
	return b.DefaultOdds
}

// PriceMultiplier returns the pond's sale price multiplier (1 when unset).
func (b Balance) PriceMultiplier(pond string) float64 {
	if m, ok := b.PondPriceMultipliers[pond]; ok && m > 0 {
		return m
	}
	return 1
}

func (b *Balance) ApplyDefaults() {
	d := Default()
	if b.StackLimit == 0 {
		b.StackLimit = d.StackLimit
	}
	if b.CatchIntervalSeconds == 0 {
		b.CatchIntervalSeconds = d.CatchIntervalSeconds
	}
	if b.SessionMinutes == 0 {
		b.SessionMinutes = d.SessionMinutes
	}
	if b.DefaultOdds == (Odds{}) {
		b.DefaultOdds = d.DefaultOdds
	}
	if len(b.RarityWeights) == 0 {
		b.RarityWeights = d.RarityWeights
	}
	if len(b.QualityWeights) == 0 {
		b.QualityWeights = d.QualityWeights
	}
}

// Validate reports the first balance value the engine cannot run with.
func (b Balance) Validate() error {
	if b.StackLimit <= 0 {
		return fmt.Errorf("%w: stack_limit must be positive, got %d", ErrInvalidBalance, b.StackLimit)
	}
	if b.CatchIntervalSeconds <= 0 {
		return fmt.Errorf("%w: catch_interval_seconds must be positive, got %d", ErrInvalidBalance, b.CatchIntervalSeconds)
	}
	if b.MaxOfflineCatches < 0 {
		return fmt.Errorf("%w: max_offline_catches must not be negative", ErrInvalidBalance)
	}
	if len(b.RarityWeights) != 5 {
		return fmt.Errorf("%w: rarity_weights needs 5 entries, got %d", ErrInvalidBalance, len(b.RarityWeights))
	}
	if len(b.QualityWeights) != 5 {
		return fmt.Errorf("%w: quality_weights needs 5 entries, got %d", ErrInvalidBalance, len(b.QualityWeights))
	}
	if err := validateOdds("default_odds", b.DefaultOdds); err != nil {
		return err
	}
	for pond, o := range b.PondOdds {
		if err := validateOdds("pond_odds["+pond+"]", o); err != nil {
			return err
		}
	}
	for pond, m := range b.PondPriceMultipliers {
		if m <= 0 {
			return fmt.Errorf("%w: pond_price_multipliers[%s] must be positive", ErrInvalidBalance, pond)
		}
	}
	return nil
}

func validateOdds(name string, o Odds) error {
	if o.Fish < 0 || o.Garbage < 0 || o.Treasure < 0 {
		return fmt.Errorf("%w: %s has a negative weight", ErrInvalidBalance, name)
	}
	if o.Fish+o.Garbage+o.Treasure <= 0 {
		return fmt.Errorf("%w: %s sums to zero", ErrInvalidBalance, name)
	}
	return nil
}
