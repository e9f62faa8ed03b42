package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"idlepond/internal/catalog"
)

const SchemaVersion = 2

var ErrCorrupt = errors.New("progress: corrupt save data")

type document struct {
	SchemaVersion int          `json:"schema_version"`
	State         State        `json:"state"`
	Guide         []GuideEntry `json:"guide"`

	// v1 kept level and XP at the top level.
	LegacyLevel *int `json:"level,omitempty"`
	LegacyXP    *int `json:"currentXP,omitempty"`
}

var migrations = map[int]func(*document){
	1: func(d *document) {
		if d.LegacyLevel != nil {
			d.State.Level = *d.LegacyLevel
		}
		if d.LegacyXP != nil {
			d.State.CurrentXP = *d.LegacyXP
		}
		d.LegacyLevel, d.LegacyXP = nil, nil
	},
}

func (t *Tracker) Serialize() ([]byte, error) {
	return json.MarshalIndent(document{
		SchemaVersion: SchemaVersion,
		State:         t.State(),
		Guide:         t.Guide(),
	}, "", "  ")
}

// Restore builds a tracker for fish and applies saved progress on top.
// Saved entries for species no longer in the catalog are dropped.
func Restore(data []byte, fish []catalog.Fish, logger *slog.Logger) (*Tracker, error) {
	t := NewTracker(fish, logger)
	if len(data) == 0 {
		return t, nil
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

	if d.State.Level < 0 || d.State.CurrentXP < 0 {
		return nil, fmt.Errorf("%w: negative level or xp", ErrCorrupt)
	}

	// Carry any overflow so CurrentXP < XPForNextLevel(Level) holds.
	xp := d.State.CurrentXP
	t.state = State{Level: d.State.Level}
	t.AddXP(xp)

	for _, saved := range d.Guide {
		i, ok := t.index[saved.Name]
		if !ok {
			t.logger.Warn("dropping guide progress for unknown fish", "fish", saved.Name)
			continue
		}
		e := &t.guide[i]
		e.Discovered = saved.Discovered || saved.CaughtCount > 0
		e.CaughtMinWeight = saved.CaughtMinWeight
		e.CaughtMaxWeight = saved.CaughtMaxWeight
		if saved.CaughtCount > 0 {
			e.CaughtCount = saved.CaughtCount
		}
	}
	return t, nil
}
