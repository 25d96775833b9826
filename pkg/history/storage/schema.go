package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the history tables. Times are stored as Unix nanoseconds
// and durations as nanoseconds so both SQLite drivers round-trip them the
// same way.
const Schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    origin TEXT NOT NULL,
    input_hash TEXT NOT NULL,
    input TEXT NOT NULL,
    cleaned TEXT NOT NULL,
    output TEXT NOT NULL,
    status TEXT NOT NULL,
    error_type TEXT,
    error_message TEXT,
    clean_passes INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
CREATE INDEX IF NOT EXISTS idx_conversions_input_hash ON conversions(input_hash);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const selectColumns = `id, request_id, origin, input_hash, input, cleaned, output,
	status, error_type, error_message, clean_passes, duration_ns, created_at`
