package storage

import (
	"fmt"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
)

// New creates the storage backend named by cfg.Backend.
func New(cfg *config.HistoryConfig) (history.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		s, err := NewSQLite(&cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite3":
		s, err := NewSQLite3(&cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, history.NewStorageError(cfg.Backend, "open",
			fmt.Errorf("%w: %q", errUnsupportedBackend, cfg.Backend))
	}
}

func errDuplicateID(id string) error {
	return fmt.Errorf("record %q already exists", id)
}
