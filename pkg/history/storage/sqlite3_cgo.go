//go:build cgo

package storage

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)

	"mercator-hq/texsolve/pkg/config"
)

// SQLite3Available reports whether the cgo SQLite driver is compiled in.
const SQLite3Available = true

// NewSQLite3 opens history storage with the cgo github.com/mattn/go-sqlite3
// driver.
func NewSQLite3(cfg *config.SQLiteConfig) (*SQLStorage, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	return openSQL("sqlite3", "sqlite3", dsn, cfg)
}
