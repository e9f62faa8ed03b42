package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound   = errors.New("storage: key not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Well-known keys.
const (
	KeyLedger   = "ledger"
	KeyProgress = "progress"
	KeySession  = "session"
)

// Entry is one key/value pair for SaveAll.
type Entry struct {
	Key  string
	Data []byte
}

// Store persists opaque save blobs by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	// SaveAll writes entries in order. Implementations that can, commit
	// them atomically.
	SaveAll(ctx context.Context, entries []Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
