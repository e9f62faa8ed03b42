package ledger

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"idlepond/internal/catch"
)

const DefaultStackLimit = 8

var (
	ErrNotStackable      = errors.New("ledger: fish do not stack")
	ErrInvalidQuantity   = errors.New("ledger: quantity must be positive")
	ErrUnknownSection    = errors.New("ledger: unknown section")
	ErrOverflow          = errors.New("ledger: value overflows")
	ErrInsufficientFunds = errors.New("ledger: not enough coins")
)

// Ledger is the player's backpack: stacked garbage and treasure, the fish
// basket, the fish library, the coin wallet and gear bought with it.
type Ledger struct {
	mu         sync.RWMutex
	stackLimit int
	garbage    []StackSlot
	treasure   []StackSlot
	basket     []FishSlot
	library    []FishSlot
	coins      int
	gear       map[string]int
	newID      func() uuid.UUID
}

func New(stackLimit int) *Ledger {
	if stackLimit <= 0 {
		stackLimit = DefaultStackLimit
	}
	return &Ledger{
		stackLimit: stackLimit,
		newID:      uuid.New,
	}
}

func (l *Ledger) StackLimit() int { return l.stackLimit }

// AddStackable places quantity units of item into the garbage or treasure
// section. Partially filled slots with the same name fill first, in slot
// order; the remainder opens new slots of at most stackLimit units.
func (l *Ledger) AddStackable(cat catch.Category, item StackSlot, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var slots *[]StackSlot
	switch cat {
	case catch.CategoryGarbage:
		slots = &l.garbage
	case catch.CategoryTreasure:
		slots = &l.treasure
	case catch.CategoryFish:
		return ErrNotStackable
	default:
		return fmt.Errorf("%w: category %s", ErrUnknownSection, cat)
	}

	remain := quantity
	for remain > 0 {
		i := l.openSlot(*slots, item.Name)
		if i >= 0 {
			s := &(*slots)[i]
			n := min(l.stackLimit-s.Quantity, remain)
			s.Quantity += n
			s.TotalCount += n
			s.FishedCount += n
			remain -= n
			continue
		}
		n := min(remain, l.stackLimit)
		slot := item
		slot.ID = l.newID()
		slot.Quantity = n
		slot.TotalCount = n
		slot.FishedCount = n
		*slots = append(*slots, slot)
		remain -= n
	}
	return nil
}

func (l *Ledger) openSlot(slots []StackSlot, name string) int {
	for i := range slots {
		if slots[i].Name == name && slots[i].Quantity < l.stackLimit {
			return i
		}
	}
	return -1
}

func (l *Ledger) AddGarbage(g *catch.GarbageCatch) error {
	qty := g.Quantity
	if qty == 0 {
		qty = 1
	}
	return l.AddStackable(catch.CategoryGarbage, garbageSlot(g), qty)
}

func (l *Ledger) AddTreasure(t *catch.TreasureCatch) error {
	qty := t.Quantity
	if qty == 0 {
		qty = 1
	}
	return l.AddStackable(catch.CategoryTreasure, treasureSlot(t), qty)
}

// AddFish appends a new fish to the basket and returns its slot.
func (l *Ledger) AddFish(f *catch.FishCatch, caughtAt time.Time) FishSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := FishSlot{
		ID:       l.newID(),
		Name:     f.Name,
		Image:    f.Image,
		Pond:     f.Pond,
		Rarity:   f.Rarity,
		Quality:  f.Quality,
		Weight:   f.Weight,
		Price:    f.Price,
		Exp:      f.Exp,
		CaughtAt: caughtAt,
	}
	l.basket = append(l.basket, slot)
	return slot
}

// MoveFishToLibrary archives a basket fish. An unknown id is a no-op and
// reports false.
func (l *Ledger) MoveFishToLibrary(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.basket {
		if l.basket[i].ID == id {
			l.library = append(l.library, l.basket[i])
			l.basket = append(l.basket[:i], l.basket[i+1:]...)
			return true
		}
	}
	return false
}

// SellAll empties a section and credits its value to the wallet.
// Nothing changes when the proceeds cannot be computed.
func (l *Ledger) SellAll(sec Section) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total, err := l.valueLocked(sec)
	if err != nil {
		return 0, err
	}
	if l.coins > math.MaxInt-total {
		return 0, fmt.Errorf("%w: wallet", ErrOverflow)
	}

	switch sec {
	case Garbage:
		l.garbage = nil
	case Treasure:
		l.treasure = nil
	case Basket:
		l.basket = nil
	case Library:
		l.library = nil
	}
	l.coins += total
	return total, nil
}

// TotalValue sums price times quantity over a section.
func (l *Ledger) TotalValue(sec Section) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.valueLocked(sec)
}

func (l *Ledger) valueLocked(sec Section) (int, error) {
	total := 0
	add := func(price, qty int) error {
		if qty != 0 && price > (math.MaxInt-total)/qty {
			return fmt.Errorf("%w: %s value", ErrOverflow, sec)
		}
		total += price * qty
		return nil
	}

	switch sec {
	case Garbage, Treasure:
		for _, s := range l.stacksLocked(sec) {
			if err := add(s.Price, s.Quantity); err != nil {
				return 0, err
			}
		}
	case Basket, Library:
		for _, f := range l.fishLocked(sec) {
			if err := add(f.Price, 1); err != nil {
				return 0, err
			}
		}
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownSection, int(sec))
	}
	return total, nil
}

func (l *Ledger) stacksLocked(sec Section) []StackSlot {
	if sec == Treasure {
		return l.treasure
	}
	return l.garbage
}

func (l *Ledger) fishLocked(sec Section) []FishSlot {
	if sec == Library {
		return l.library
	}
	return l.basket
}

// Purchase debits cost from the wallet and adds items to the owned gear.
// Nothing changes unless the wallet covers cost and every count is positive.
func (l *Ledger) Purchase(cost int, items map[string]int) error {
	if cost < 0 {
		return fmt.Errorf("%w: cost %d", ErrInvalidQuantity, cost)
	}
	for name, n := range items {
		if n <= 0 {
			return fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, name, n)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cost > l.coins {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, l.coins, cost)
	}
	for name, n := range items {
		if l.gear[name] > math.MaxInt-n {
			return fmt.Errorf("%w: %s count", ErrOverflow, name)
		}
	}
	l.coins -= cost
	if l.gear == nil && len(items) > 0 {
		l.gear = make(map[string]int, len(items))
	}
	for name, n := range items {
		l.gear[name] += n
	}
	return nil
}

// Gear returns a copy of the owned item counts.
func (l *Ledger) Gear() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.gear)
}

func (l *Ledger) Coins() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.coins
}

// Stacks returns a copy of the garbage or treasure slots.
func (l *Ledger) Stacks(sec Section) []StackSlot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if sec != Garbage && sec != Treasure {
		return nil
	}
	src := l.stacksLocked(sec)
	out := make([]StackSlot, len(src))
	copy(out, src)
	return out
}

// Fish returns a copy of the basket or library.
func (l *Ledger) Fish(sec Section) []FishSlot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if sec != Basket && sec != Library {
		return nil
	}
	src := l.fishLocked(sec)
	out := make([]FishSlot, len(src))
	copy(out, src)
	return out
}

// FishCountByName counts basket and library fish per species.
func (l *Ledger) FishCountByName() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int)
	for _, f := range l.basket {
		counts[f.Name]++
	}
	for _, f := range l.library {
		counts[f.Name]++
	}
	return counts
}

// Snapshot is a deep copy of the ledger for readers.
type Snapshot struct {
	Garbage  []StackSlot    `json:"garbage"`
	Treasure []StackSlot    `json:"treasure"`
	Basket   []FishSlot     `json:"basket"`
	Library  []FishSlot     `json:"library"`
	Coins    int            `json:"coins"`
	Gear     map[string]int `json:"gear,omitempty"`
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	return Snapshot{
		Garbage:  append([]StackSlot{}, l.garbage...),
		Treasure: append([]StackSlot{}, l.treasure...),
		Basket:   append([]FishSlot{}, l.basket...),
		Library:  append([]FishSlot{}, l.library...),
		Coins:    l.coins,
		Gear:     maps.Clone(l.gear),
	}
}
