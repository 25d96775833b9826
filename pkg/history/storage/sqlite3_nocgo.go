//go:build !cgo

package storage

import (
	"fmt"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
)

// SQLite3Available reports whether the cgo SQLite driver is compiled in.
const SQLite3Available = false

// NewSQLite3 is unavailable without cgo; use the "sqlite" backend instead.
func NewSQLite3(cfg *config.SQLiteConfig) (*SQLStorage, error) {
	return nil, history.NewStorageError("sqlite3", "open",
		fmt.Errorf("%w: sqlite3 requires cgo, use backend \"sqlite\"", errUnsupportedBackend))
}
