package storage

import (
	"context"
	"fmt"

	"idlepond/internal/config"
)

// Open returns the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.DataDir)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}
