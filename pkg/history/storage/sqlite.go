package storage

import (
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/texsolve/pkg/config"
)

// NewSQLite opens history storage with the pure Go modernc.org/sqlite driver.
func NewSQLite(cfg *config.SQLiteConfig) (*SQLStorage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=%s&_pragma=%s",
		cfg.Path,
		url.QueryEscape(fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds())),
		url.QueryEscape("journal_mode(WAL)"),
	)
	return openSQL("sqlite", "sqlite", dsn, cfg)
}
