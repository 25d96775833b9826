// Package history keeps an audit trail of conversions.
//
// Every conversion that passes through the engine can be written as a Record:
// who asked (request ID and origin), what was converted (a SHA-256 of the
// full input plus truncated input, cleaned text and output), and how it ended
// (status, error type and the user-facing message).
//
// # Subpackages
//
//   - storage: memory, SQLite (modernc.org/sqlite, pure Go) and SQLite
//     (github.com/mattn/go-sqlite3, cgo) backends
//   - recorder: asynchronous, channel-buffered writer used on the hot path
//   - retention: age and count based pruning on a cron schedule
//   - query: query validation and defaults
//   - export: JSON and CSV exporters
//
// # Usage
//
//	store, err := storage.New(&cfg.History)
//	rec := recorder.New(store, &cfg.History.Recorder, collector)
//	defer rec.Close()
//	rec.Record(ctx, record)
package history
