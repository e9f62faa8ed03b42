package catalog

import (
	"fmt"
	"strings"
)

// Rarity is ordered from most to least common.
type Rarity int

const (
	Common Rarity = iota
	Rare
	Epic
	Legendary
	Mythic
)

// Rarities lists every tier in sampler order.
var Rarities = []Rarity{Common, Rare, Epic, Legendary, Mythic}

func (r Rarity) String() string {
	switch r {
	case Common:
		return "Common"
	case Rare:
		return "Rare"
	case Epic:
		return "Epic"
	case Legendary:
		return "Legendary"
	case Mythic:
		return "Mythic"
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}

func (r Rarity) Valid() bool {
	return r >= Common && r <= Mythic
}

// RarityFromIndex maps a 1-based sampler index to a tier.
func RarityFromIndex(i int) (Rarity, bool) {
	r := Rarity(i - 1)
	return r, r.Valid()
}

func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common", "普通":
		return Common, nil
	case "rare", "稀有":
		return Rare, nil
	case "epic", "史诗":
		return Epic, nil
	case "legendary", "传说":
		return Legendary, nil
	case "mythic", "至珍", "至臻":
		return Mythic, nil
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rarity %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
