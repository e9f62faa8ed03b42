package catch

import (
	"fmt"
	"strings"

	"idlepond/internal/catalog"
)

// Category is the kind of thing that came out of the water.
type Category int

const (
	CategoryFish Category = iota + 1
	CategoryGarbage
	CategoryTreasure
)

func (c Category) String() string {
	switch c {
	case CategoryFish:
		return "fish"
	case CategoryGarbage:
		return "garbage"
	case CategoryTreasure:
		return "treasure"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Quality grades a caught fish by where its weight fell.
type Quality int

const (
	Poor Quality = iota
	Fine
	Average
	Good
	Excellent
	Flawless
)

func (q Quality) String() string {
	switch q {
	case Poor:
		return "Poor"
	case Fine:
		return "Fine"
	case Average:
		return "Average"
	case Good:
		return "Good"
	case Excellent:
		return "Excellent"
	case Flawless:
		return "Flawless"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Factor is the price multiplier for the quality.
func (q Quality) Factor() float64 {
	switch q {
	case Poor:
		return 1.0
	case Fine:
		return 1.5
	case Average:
		return 2.0
	case Good:
		return 2.5
	case Excellent:
		return 3.0
	case Flawless:
		return 50.0
	}
	return 1.0
}

func (q Quality) Valid() bool {
	return q >= Poor && q <= Flawless
}

func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "poor":
		return Poor, nil
	case "fine":
		return Fine, nil
	case "average":
		return Average, nil
	case "good":
		return Good, nil
	case "excellent":
		return Excellent, nil
	case "flawless":
		return Flawless, nil
	}
	return Poor, fmt.Errorf("unknown quality %q", s)
}

func (q Quality) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("invalid quality %d", int(q))
	}
	return []byte(q.String()), nil
}

func (q *Quality) UnmarshalText(b []byte) error {
	v, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// Catch is one resolved result: *FishCatch, *GarbageCatch or *TreasureCatch.
type Catch interface {
	Category() Category
	ItemName() string
}

type FishCatch struct {
	Name    string
	Image   string
	Pond    string
	Rarity  catalog.Rarity
	Quality Quality
	Weight  float64
	Price   int
	Exp     int
}

func (*FishCatch) Category() Category  { return CategoryFish }
func (f *FishCatch) ItemName() string { return f.Name }

type GarbageCatch struct {
	Name        string
	Image       string
	Pond        string
	Description string
	Price       int
	Quantity    int
}

func (*GarbageCatch) Category() Category  { return CategoryGarbage }
func (g *GarbageCatch) ItemName() string { return g.Name }

type TreasureCatch struct {
	Name        string
	Image       string
	Pond        string
	Description string
	Rarity      catalog.Rarity
	Price       int
	Exp         int
	Quantity    int
}

func (*TreasureCatch) Category() Category  { return CategoryTreasure }
func (t *TreasureCatch) ItemName() string { return t.Name }
