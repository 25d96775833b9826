package history

import (
	"context"
	"io"
	"time"
)

// Conversion outcomes stored in Record.Status.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Record is the audit trail of a single conversion.
type Record struct {
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // Correlates with logs and traces
	Origin    string `json:"origin"`     // "cli", "http", "watch"

	InputHash string `json:"input_hash"` // SHA-256 of the full source markup
	Input     string `json:"input"`      // Source markup, truncated
	Cleaned   string `json:"cleaned"`    // Cleaned markup, truncated
	Output    string `json:"output"`     // Solver syntax, truncated

	Status       string `json:"status"`                  // StatusOK or StatusError
	ErrorType    string `json:"error_type,omitempty"`    // delimiter, cleaning, syntax, translation, internal, unknown
	ErrorMessage string `json:"error_message,omitempty"` // User-facing message

	CleanPasses int           `json:"clean_passes"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Failed reports whether the conversion failed.
func (r *Record) Failed() bool {
	return r.Status == StatusError
}

// Query defines filter parameters for querying history records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	// Filters
	IDs       []string `json:"ids,omitempty"`
	Status    string   `json:"status,omitempty"`
	ErrorType string   `json:"error_type,omitempty"`
	Origin    string   `json:"origin,omitempty"`
	InputHash string   `json:"input_hash,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "created_at", "duration"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for history storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Query retrieves records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters.
	// Pagination fields are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns the
	// number deleted. Pagination fields are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter writes records in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
