package catch

import (
	"fmt"

	"github.com/shopspring/decimal"

	"idlepond/internal/catalog"
	"idlepond/internal/config"
	"idlepond/internal/sampler"
)

const qualityBands = 5

// Resolver turns catalog entries into concrete catches.
type Resolver struct {
	sampler        *sampler.Sampler
	qualityWeights []float64
	balance        config.Balance
}

func NewResolver(s *sampler.Sampler, balance config.Balance) *Resolver {
	return &Resolver{
		sampler:        s,
		qualityWeights: balance.QualityWeights,
		balance:        balance,
	}
}

// Fish rolls quality, weight and price for one fish.
func (r *Resolver) Fish(f catalog.Fish) (*FishCatch, error) {
	idx, err := r.sampler.Sample(qualityBands, r.qualityWeights...)
	if err != nil {
		return nil, fmt.Errorf("quality roll for %s: %w", f.Name, err)
	}
	quality := Quality(idx - 1)

	lo, hi := QualityBand(f.MinWeight, f.MaxWeight, quality)
	weight := TruncateWeight(r.sampler.FloatClosed(lo, hi))
	if weight < f.MinWeight {
		weight = f.MinWeight
	}
	if weight > f.MaxWeight {
		weight = f.MaxWeight
	}
	if weight == f.MaxWeight {
		quality = Flawless
	}

	return &FishCatch{
		Name:    f.Name,
		Image:   f.Image,
		Pond:    f.Pond,
		Rarity:  f.Rarity,
		Quality: quality,
		Weight:  weight,
		Price:   FishPrice(f.Price, weight, f.MaxWeight, quality, r.balance.PriceMultiplier(f.Pond)),
		Exp:     f.Exp,
	}, nil
}

func (r *Resolver) Garbage(g catalog.Garbage) *GarbageCatch {
	return &GarbageCatch{
		Name:        g.Name,
		Image:       g.Image,
		Pond:        g.Pond,
		Description: g.Description,
		Price:       g.Price,
		Quantity:    1,
	}
}

func (r *Resolver) Treasure(t catalog.Treasure) *TreasureCatch {
	return &TreasureCatch{
		Name:        t.Name,
		Image:       t.Image,
		Pond:        t.Pond,
		Description: t.Description,
		Rarity:      t.Rarity,
		Price:       t.Price,
		Exp:         t.Exp,
		Quantity:    1,
	}
}

// QualityBand returns the sub-range of [min, max] for a rolled quality.
// Flawless has no band of its own and maps to the top one.
func QualityBand(min, max float64, q Quality) (float64, float64) {
	k := int(q)
	if k >= qualityBands {
		k = qualityBands - 1
	}
	step := (max - min) / qualityBands
	lo := min + float64(k)*step
	hi := lo + step
	if k == qualityBands-1 {
		hi = max
	}
	return lo, hi
}

// TruncateWeight drops everything past two decimals.
func TruncateWeight(w float64) float64 {
	v, _ := decimal.NewFromFloat(w).Truncate(2).Float64()
	return v
}

// FishPrice is trunc((base + weight/maxWeight*base) * quality * multiplier).
func FishPrice(base int, weight, maxWeight float64, q Quality, multiplier float64) int {
	b := decimal.NewFromInt(int64(base))
	price := b
	if maxWeight > 0 {
		ratio := decimal.NewFromFloat(weight).Div(decimal.NewFromFloat(maxWeight))
		price = price.Add(ratio.Mul(b))
	}
	price = price.Mul(decimal.NewFromFloat(q.Factor())).Mul(decimal.NewFromFloat(multiplier))
	return int(price.IntPart())
}
