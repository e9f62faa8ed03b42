package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnsupportedSort = errors.New("ledger: sort key not supported for section")

type SortKey int

const (
	SortByName SortKey = iota + 1
	SortByPriceAsc
	SortByPriceDesc
	SortByQuantity
	SortByRarity
	SortByQuality
	SortByWeightAsc
	SortByWeightDesc
)

func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortByPriceAsc:
		return "price-asc"
	case SortByPriceDesc:
		return "price-desc"
	case SortByQuantity:
		return "quantity"
	case SortByRarity:
		return "rarity"
	case SortByQuality:
		return "quality"
	case SortByWeightAsc:
		return "weight-asc"
	case SortByWeightDesc:
		return "weight-desc"
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName, nil
	case "price-asc", "price":
		return SortByPriceAsc, nil
	case "price-desc":
		return SortByPriceDesc, nil
	case "quantity", "qty":
		return SortByQuantity, nil
	case "rarity":
		return SortByRarity, nil
	case "quality":
		return SortByQuality, nil
	case "weight-asc", "weight":
		return SortByWeightAsc, nil
	case "weight-desc":
		return SortByWeightDesc, nil
	}
	return 0, fmt.Errorf("unknown sort key %q", s)
}

// Sort reorders a section in place. Equal keys keep their prior order.
// Keys sort ascending unless the key name says otherwise.
func (l *Ledger) Sort(sec Section, key SortKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch sec {
	case Garbage, Treasure:
		slots := l.stacksLocked(sec)
		less, err := stackLess(sec, key, slots)
		if err != nil {
			return err
		}
		sort.SliceStable(slots, less)
	case Basket, Library:
		fish := l.fishLocked(sec)
		less, err := fishLess(sec, key, fish)
		if err != nil {
			return err
		}
		sort.SliceStable(fish, less)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownSection, int(sec))
	}
	return nil
}

func stackLess(sec Section, key SortKey, s []StackSlot) (func(i, j int) bool, error) {
	switch key {
	case SortByName:
		return func(i, j int) bool { return s[i].Name < s[j].Name }, nil
	case SortByPriceAsc:
		return func(i, j int) bool { return s[i].Price < s[j].Price }, nil
	case SortByPriceDesc:
		return func(i, j int) bool { return s[i].Price > s[j].Price }, nil
	case SortByQuantity:
		return func(i, j int) bool { return s[i].Quantity < s[j].Quantity }, nil
	case SortByRarity:
		if sec == Treasure {
			return func(i, j int) bool { return s[i].Rarity < s[j].Rarity }, nil
		}
	}
	return nil, fmt.Errorf("%w: %s by %s", ErrUnsupportedSort, sec, key)
}

func fishLess(sec Section, key SortKey, f []FishSlot) (func(i, j int) bool, error) {
	switch key {
	case SortByName:
		return func(i, j int) bool { return f[i].Name < f[j].Name }, nil
	case SortByPriceAsc:
		return func(i, j int) bool { return f[i].Price < f[j].Price }, nil
	case SortByPriceDesc:
		return func(i, j int) bool { return f[i].Price > f[j].Price }, nil
	case SortByRarity:
		return func(i, j int) bool { return f[i].Rarity < f[j].Rarity }, nil
	case SortByQuality:
		return func(i, j int) bool { return f[i].Quality < f[j].Quality }, nil
	case SortByWeightAsc:
		return func(i, j int) bool { return f[i].Weight < f[j].Weight }, nil
	case SortByWeightDesc:
		return func(i, j int) bool { return f[i].Weight > f[j].Weight }, nil
	}
	return nil, fmt.Errorf("%w: %s by %s", ErrUnsupportedSort, sec, key)
}
