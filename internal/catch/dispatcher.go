package catch

import (
	"errors"
	"fmt"
	"log/slog"

	"idlepond/internal/catalog"
	"idlepond/internal/config"
	"idlepond/internal/sampler"
)

// ErrNoSelection means the roll landed on an empty candidate set.
var ErrNoSelection = errors.New("catch: nothing to catch")

// Dispatcher performs one catch attempt against a pond.
type Dispatcher struct {
	catalog  *catalog.Store
	resolver *Resolver
	sampler  *sampler.Sampler
	balance  config.Balance
	logger   *slog.Logger
}

func NewDispatcher(cat *catalog.Store, s *sampler.Sampler, balance config.Balance, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		catalog:  cat,
		resolver: NewResolver(s, balance),
		sampler:  s,
		balance:  balance,
		logger:   logger,
	}
}

// RandomCatch rolls a category from the pond odds, then an item within it.
// Errors wrap ErrNoSelection or sampler.ErrConfiguration; callers treat
// both as "nothing caught" and do not retry.
func (d *Dispatcher) RandomCatch(pond string) (Catch, error) {
	odds := d.balance.OddsFor(pond)
	idx, err := d.sampler.Sample(3, odds.Weights()...)
	if err != nil {
		return nil, fmt.Errorf("category roll for %q: %w", pond, err)
	}

	switch Category(idx) {
	case CategoryFish:
		return d.fish(pond)
	case CategoryGarbage:
		return d.garbage(pond)
	case CategoryTreasure:
		return d.treasure(pond)
	}
	return nil, fmt.Errorf("%w: category index %d", ErrNoSelection, idx)
}

func (d *Dispatcher) rollRarity() (catalog.Rarity, error) {
	idx, err := d.sampler.Sample(len(catalog.Rarities), d.balance.RarityWeights...)
	if err != nil {
		return catalog.Common, fmt.Errorf("rarity roll: %w", err)
	}
	r, ok := catalog.RarityFromIndex(idx)
	if !ok {
		return catalog.Common, fmt.Errorf("%w: rarity index %d", ErrNoSelection, idx)
	}
	return r, nil
}

func (d *Dispatcher) fish(pond string) (Catch, error) {
	rarity, err := d.rollRarity()
	if err != nil {
		return nil, err
	}
	var pool []catalog.Fish
	for _, f := range d.catalog.FishInPond(pond) {
		if f.Rarity == rarity {
			pool = append(pool, f)
		}
	}
	if len(pool) == 0 {
		d.logger.Debug("no fish for rarity", "pond", pond, "rarity", rarity)
		return nil, fmt.Errorf("%w: no %s fish in %q", ErrNoSelection, rarity, pond)
	}
	fc, err := d.resolver.Fish(pool[d.sampler.Intn(len(pool))])
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func (d *Dispatcher) garbage(pond string) (Catch, error) {
	pool := d.catalog.GarbageInPond(pond)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no garbage in %q", ErrNoSelection, pond)
	}
	return d.resolver.Garbage(pool[d.sampler.Intn(len(pool))]), nil
}

func (d *Dispatcher) treasure(pond string) (Catch, error) {
	rarity, err := d.rollRarity()
	if err != nil {
		return nil, err
	}
	var pool []catalog.Treasure
	for _, t := range d.catalog.TreasureInPond(pond) {
		if t.Rarity == rarity {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		d.logger.Debug("no treasure for rarity", "pond", pond, "rarity", rarity)
		return nil, fmt.Errorf("%w: no %s treasure in %q", ErrNoSelection, rarity, pond)
	}
	return d.resolver.Treasure(pool[d.sampler.Intn(len(pool))]), nil
}
