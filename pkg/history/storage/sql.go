package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
)

// SQLStorage implements history.Storage on database/sql. Both SQLite
// backends share it and differ only in driver and DSN.
type SQLStorage struct {
	db      *sql.DB
	backend string
	logger  *slog.Logger
}

// openSQL opens dsn with driver and prepares the schema.
func openSQL(backend, driver, dsn string, cfg *config.SQLiteConfig) (*SQLStorage, error) {
	logger := slog.Default().With("component", "history.storage."+backend)

	if cfg.Path != "" && cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, history.NewStorageError(backend, "mkdir", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, history.NewStorageError(backend, "open", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLStorage{db: db, backend: backend, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history storage initialized",
		"path", cfg.Path,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

// initialize creates the schema and verifies its version.
func (s *SQLStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError(s.backend, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError(s.backend, "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return history.NewStorageError(s.backend, "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return history.NewStorageError(s.backend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}
	return nil
}

// Backend returns the backend name.
func (s *SQLStorage) Backend() string {
	return s.backend
}

// Store persists a record.
func (s *SQLStorage) Store(ctx context.Context, record *history.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RequestID, record.Origin,
		record.InputHash, record.Input, record.Cleaned, record.Output,
		record.Status, nullString(record.ErrorType), nullString(record.ErrorMessage),
		record.CleanPasses, int64(record.Duration), record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return history.NewStorageError(s.backend, "store", err)
	}
	return nil
}

// Get returns one record by ID.
func (s *SQLStorage) Get(ctx context.Context, id string) (*history.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM conversions WHERE id = ?`, id)
	if err != nil {
		return nil, history.NewStorageError(s.backend, "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, history.NewStorageError(s.backend, "get", err)
		}
		return nil, history.ErrNotFound
	}
	record, err := scanRecord(rows)
	if err != nil {
		return nil, history.NewStorageError(s.backend, "scan", err)
	}
	return record, nil
}

// Query retrieves records matching the query filters.
func (s *SQLStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	where, args := buildWhereClause(query)

	sqlQuery := `SELECT ` + selectColumns + ` FROM conversions` + where

	sortBy := "created_at"
	if query.SortBy == "duration" {
		sortBy = "duration_ns"
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s, id %s", sortBy, sortOrder, sortOrder)

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	} else if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT -1 OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError(s.backend, "query", err)
	}
	defer rows.Close()

	records := []*history.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, history.NewStorageError(s.backend, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError(s.backend, "query", err)
	}
	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	where, args := buildWhereClause(query)

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions`+where, args...).Scan(&count); err != nil {
		return 0, history.NewStorageError(s.backend, "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *SQLStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	where, args := buildWhereClause(query)

	result, err := s.db.ExecContext(ctx, `DELETE FROM conversions`+where, args...)
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (s *SQLStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return history.NewStorageError(s.backend, "ping", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError(s.backend, "close", err)
	}
	s.logger.Info("history storage closed")
	return nil
}

// buildWhereClause builds a " WHERE ..." clause (or "") and its arguments.
func buildWhereClause(query *history.Query) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if query.StartTime != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}
	if len(query.IDs) > 0 {
		conditions = append(conditions, "id IN (?"+strings.Repeat(", ?", len(query.IDs)-1)+")")
		for _, id := range query.IDs {
			args = append(args, id)
		}
	}
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}
	if query.ErrorType != "" {
		conditions = append(conditions, "error_type = ?")
		args = append(args, query.ErrorType)
	}
	if query.Origin != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, query.Origin)
	}
	if query.InputHash != "" {
		conditions = append(conditions, "input_hash = ?")
		args = append(args, query.InputHash)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanRecord scans the current row into a Record.
func scanRecord(rows *sql.Rows) (*history.Record, error) {
	var (
		record               history.Record
		errorType, errorMsg  sql.NullString
		durationNs, createdN int64
	)

	err := rows.Scan(
		&record.ID, &record.RequestID, &record.Origin,
		&record.InputHash, &record.Input, &record.Cleaned, &record.Output,
		&record.Status, &errorType, &errorMsg,
		&record.CleanPasses, &durationNs, &createdN,
	)
	if err != nil {
		return nil, err
	}

	record.ErrorType = errorType.String
	record.ErrorMessage = errorMsg.String
	record.Duration = time.Duration(durationNs)
	record.CreatedAt = time.Unix(0, createdN).UTC()
	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var errUnsupportedBackend = errors.New("unsupported history backend")
