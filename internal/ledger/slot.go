package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
)

// Section is one tab of the backpack.
type Section int

const (
	Garbage Section = iota + 1
	Treasure
	Basket
	Library
)

var Sections = []Section{Garbage, Treasure, Basket, Library}

func (s Section) String() string {
	switch s {
	case Garbage:
		return "garbage"
	case Treasure:
		return "treasure"
	case Basket:
		return "basket"
	case Library:
		return "library"
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "garbage":
		return Garbage, nil
	case "treasure":
		return Treasure, nil
	case "basket", "fish":
		return Basket, nil
	case "library":
		return Library, nil
	}
	return 0, fmt.Errorf("unknown section %q", s)
}

// StackSlot holds up to the stack limit of one garbage or treasure item.
type StackSlot struct {
	ID          uuid.UUID      `json:"id" csv:"id"`
	Name        string         `json:"name" csv:"name"`
	Image       string         `json:"image" csv:"-"`
	Pond        string         `json:"pond" csv:"pond"`
	Description string         `json:"description,omitempty" csv:"-"`
	Rarity      catalog.Rarity `json:"rarity,omitempty" csv:"rarity"`
	Exp         int            `json:"exp,omitempty" csv:"-"`
	Price       int            `json:"price" csv:"price"`
	Quantity    int            `json:"quantity" csv:"quantity"`
	TotalCount  int            `json:"totalCount" csv:"total_count"`
	FishedCount int            `json:"fishedCount" csv:"fished_count"`
}

// FishSlot is one fish. Fish never stack.
type FishSlot struct {
	ID       uuid.UUID      `json:"id" csv:"id"`
	Name     string         `json:"name" csv:"name"`
	Image    string         `json:"image" csv:"-"`
	Pond     string         `json:"pond" csv:"pond"`
	Rarity   catalog.Rarity `json:"rarity" csv:"rarity"`
	Quality  catch.Quality  `json:"quality" csv:"quality"`
	Weight   float64        `json:"weight" csv:"weight"`
	Price    int            `json:"price" csv:"price"`
	Exp      int            `json:"exp" csv:"-"`
	CaughtAt time.Time      `json:"caughtAt" csv:"caught_at"`
}

func garbageSlot(g *catch.GarbageCatch) StackSlot {
	return StackSlot{
		Name:        g.Name,
		Image:       g.Image,
		Pond:        g.Pond,
		Description: g.Description,
		Price:       g.Price,
	}
}

func treasureSlot(t *catch.TreasureCatch) StackSlot {
	return StackSlot{
		Name:        t.Name,
		Image:       t.Image,
		Pond:        t.Pond,
		Description: t.Description,
		Rarity:      t.Rarity,
		Exp:         t.Exp,
		Price:       t.Price,
	}
}
