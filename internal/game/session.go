package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const SessionSchemaVersion = 1

var ErrCorruptSession = errors.New("game: corrupt session data")

// Session is the small per-player record that survives restarts: the pond
// being fished and, while the app is closed, when it was left.
type Session struct {
	Pond       string     `json:"pond"`
	LastExitAt *time.Time `json:"last_exit_at,omitempty"`
}

type sessionDocument struct {
	SchemaVersion int `json:"schema_version"`
	Session
}

func (s Session) clone() Session {
	if s.LastExitAt != nil {
		t := *s.LastExitAt
		s.LastExitAt = &t
	}
	return s
}

func (s Session) Serialize() ([]byte, error) {
	return json.Marshal(sessionDocument{SchemaVersion: SessionSchemaVersion, Session: s})
}

func RestoreSession(data []byte) (Session, error) {
	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if doc.SchemaVersion < 1 || doc.SchemaVersion > SessionSchemaVersion {
		return Session{}, fmt.Errorf("%w: schema version %d", ErrCorruptSession, doc.SchemaVersion)
	}
	return doc.Session, nil
}
