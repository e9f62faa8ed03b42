package progress

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
)

var (
	ErrUnknownFish   = errors.New("progress: fish not in guide")
	ErrAdminRequired = errors.New("progress: admin mode required")
)

// GuideEntry is one species in the fish guide.
type GuideEntry struct {
	Name              string         `json:"name"`
	Pond              string         `json:"pond"`
	Rarity            catalog.Rarity `json:"rarity"`
	Image             string         `json:"image"`
	Exp               int            `json:"exp"`
	MinWeightPossible float64        `json:"minWeightPossible"`
	MaxWeightPossible float64        `json:"maxWeightPossible"`
	Discovered        bool           `json:"discovered"`
	CaughtMinWeight   *float64       `json:"caughtMinWeight,omitempty"`
	CaughtMaxWeight   *float64       `json:"caughtMaxWeight,omitempty"`
	CaughtCount       int            `json:"caughtCount"`
}

func (e GuideEntry) clone() GuideEntry {
	if e.CaughtMinWeight != nil {
		v := *e.CaughtMinWeight
		e.CaughtMinWeight = &v
	}
	if e.CaughtMaxWeight != nil {
		v := *e.CaughtMaxWeight
		e.CaughtMaxWeight = &v
	}
	return e
}

func (e *GuideEntry) reset() {
	e.Discovered = false
	e.CaughtMinWeight = nil
	e.CaughtMaxWeight = nil
	e.CaughtCount = 0
}

// State is the player's level and progress toward the next one.
type State struct {
	Level     int `json:"level"`
	CurrentXP int `json:"currentXP"`
}

// FishCounter reports how many fish of each species the player holds.
type FishCounter interface {
	FishCountByName() map[string]int
}

// Tracker owns XP, level and the fish guide.
type Tracker struct {
	mu     sync.RWMutex
	state  State
	guide  []GuideEntry
	index  map[string]int
	logger *slog.Logger
}

// NewTracker builds one guide entry per distinct fish name, in catalog order.
func NewTracker(fish []catalog.Fish, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		index:  make(map[string]int),
		logger: logger,
	}
	for _, f := range fish {
		if _, dup := t.index[f.Name]; dup {
			continue
		}
		t.index[f.Name] = len(t.guide)
		t.guide = append(t.guide, GuideEntry{
			Name:              f.Name,
			Pond:              f.Pond,
			Rarity:            f.Rarity,
			Image:             f.Image,
			Exp:               f.Exp,
			MinWeightPossible: f.MinWeight,
			MaxWeightPossible: f.MaxWeight,
		})
	}
	return t
}

// AddXP applies amount and returns how many levels were gained.
func (t *Tracker) AddXP(amount int) int {
	if amount <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	gained := 0
	remaining := amount
	for remaining > 0 {
		needed := XPForNextLevel(t.state.Level) - t.state.CurrentXP
		if remaining >= needed {
			remaining -= needed
			t.state.Level++
			t.state.CurrentXP = 0
			gained++
			continue
		}
		t.state.CurrentXP += remaining
		remaining = 0
	}
	return gained
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// RecordCatch marks the species discovered, widens its caught weight range
// and bumps its count.
func (t *Tracker) RecordCatch(f *catch.FishCatch) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[f.Name]
	if !ok {
		t.logger.Warn("guide entry missing for caught fish", "fish", f.Name, "pond", f.Pond)
		return fmt.Errorf("%w: %s", ErrUnknownFish, f.Name)
	}
	e := &t.guide[i]
	e.Discovered = true
	if e.CaughtMinWeight == nil || f.Weight < *e.CaughtMinWeight {
		w := f.Weight
		e.CaughtMinWeight = &w
	}
	if e.CaughtMaxWeight == nil || f.Weight > *e.CaughtMaxWeight {
		w := f.Weight
		e.CaughtMaxWeight = &w
	}
	e.CaughtCount++
	return nil
}

// SyncFromLedger overwrites every caught count with what src holds.
// It returns held species that have no guide entry.
func (t *Tracker) SyncFromLedger(src FishCounter) []string {
	counts := src.FishCountByName()

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.guide {
		e := &t.guide[i]
		e.CaughtCount = counts[e.Name]
		if e.CaughtCount > 0 {
			e.Discovered = true
		}
	}

	var unknown []string
	for name := range counts {
		if _, ok := t.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		t.logger.Warn("ledger holds fish missing from guide", "fish", unknown)
	}
	return unknown
}

// ResetGuide wipes discovery progress. Admin only.
func (t *Tracker) ResetGuide(admin bool) error {
	if !admin {
		return ErrAdminRequired
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.guide {
		t.guide[i].reset()
	}
	t.logger.Info("fish guide reset")
	return nil
}

// Guide returns a deep copy of every entry in catalog order.
func (t *Tracker) Guide() []GuideEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]GuideEntry, len(t.guide))
	for i, e := range t.guide {
		out[i] = e.clone()
	}
	return out
}

func (t *Tracker) Entry(name string) (GuideEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[name]
	if !ok {
		return GuideEntry{}, false
	}
	return t.guide[i].clone(), true
}

// Discovered counts discovered species.
func (t *Tracker) Discovered() (found, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.guide {
		if e.Discovered {
			found++
		}
	}
	return found, len(t.guide)
}
