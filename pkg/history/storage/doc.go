// Package storage provides backends for conversion history.
//
// Three backends implement history.Storage:
//
//   - memory: an in-process map, useful for tests and short-lived runs
//   - sqlite: modernc.org/sqlite, pure Go, the default
//   - sqlite3: github.com/mattn/go-sqlite3, available when built with cgo
//
// Both SQLite backends share SQLStorage and the same schema. Timestamps and
// durations are stored as integer nanoseconds.
//
//	store, err := storage.New(&cfg.History)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
package storage
