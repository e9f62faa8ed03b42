package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SchemaVersion is the version written by Serialize.
const SchemaVersion = 3

var ErrCorrupt = errors.New("ledger: corrupt save data")

type document struct {
	SchemaVersion int            `json:"schema_version"`
	Garbage       []StackSlot    `json:"garbage"`
	Treasure      []StackSlot    `json:"treasure"`
	Basket        []FishSlot     `json:"basket"`
	Library       []FishSlot     `json:"library"`
	Coins         int            `json:"coins"`
	Gear          map[string]int `json:"gear,omitempty"`
}

// migrations[v] upgrades a document from version v to v+1.
var migrations = map[int]func(*document){
	1: migrateV1,
	2: func(*document) {}, // v2 saves predate the shop; no gear
}

// v1 saves had no slot IDs on fish and no per-stack counters.
func migrateV1(d *document) {
	backfill := func(slots []StackSlot) {
		for i := range slots {
			if slots[i].ID == uuid.Nil {
				slots[i].ID = uuid.New()
			}
			if slots[i].TotalCount == 0 {
				slots[i].TotalCount = slots[i].Quantity
			}
			if slots[i].FishedCount == 0 {
				slots[i].FishedCount = slots[i].Quantity
			}
		}
	}
	backfill(d.Garbage)
	backfill(d.Treasure)
	for _, fish := range [][]FishSlot{d.Basket, d.Library} {
		for i := range fish {
			if fish[i].ID == uuid.Nil {
				fish[i].ID = uuid.New()
			}
		}
	}
}

func (l *Ledger) Serialize() ([]byte, error) {
	l.mu.RLock()
	snap := l.snapshotLocked()
	l.mu.RUnlock()

	return json.MarshalIndent(document{
		SchemaVersion: SchemaVersion,
		Garbage:       snap.Garbage,
		Treasure:      snap.Treasure,
		Basket:        snap.Basket,
		Library:       snap.Library,
		Coins:         snap.Coins,
		Gear:          snap.Gear,
	}, "", "  ")
}

// Restore rebuilds a ledger from Serialize output, upgrading older
// versions. Empty input yields an empty ledger.
func Restore(data []byte, stackLimit int) (*Ledger, error) {
	l := New(stackLimit)
	if len(data) == 0 {
		return l, nil
	}

	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if d.SchemaVersion == 0 {
		d.SchemaVersion = 1
	}
	if d.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d is newer than %d", ErrCorrupt, d.SchemaVersion, SchemaVersion)
	}
	for v := d.SchemaVersion; v < SchemaVersion; v++ {
		migrate, ok := migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no migration from version %d", ErrCorrupt, v)
		}
		migrate(&d)
	}

	if d.Coins < 0 {
		return nil, fmt.Errorf("%w: negative coins", ErrCorrupt)
	}
	for _, slots := range [][]StackSlot{d.Garbage, d.Treasure} {
		for _, s := range slots {
			if s.Quantity <= 0 {
				return nil, fmt.Errorf("%w: slot %q has quantity %d", ErrCorrupt, s.Name, s.Quantity)
			}
		}
	}

	for name, n := range d.Gear {
		if n <= 0 {
			return nil, fmt.Errorf("%w: gear %q has count %d", ErrCorrupt, name, n)
		}
	}

	l.garbage = l.resplit(d.Garbage)
	l.treasure = l.resplit(d.Treasure)
	l.basket = d.Basket
	l.library = d.Library
	l.coins = d.Coins
	if len(d.Gear) > 0 {
		l.gear = d.Gear
	}
	return l, nil
}

// resplit breaks slots saved under a larger stack limit into legal ones.
func (l *Ledger) resplit(slots []StackSlot) []StackSlot {
	out := make([]StackSlot, 0, len(slots))
	for _, s := range slots {
		first := true
		for s.Quantity > 0 {
			part := s
			part.Quantity = min(s.Quantity, l.stackLimit)
			if !first {
				part.ID = l.newID()
			}
			out = append(out, part)
			s.Quantity -= part.Quantity
			first = false
		}
	}
	return out
}
