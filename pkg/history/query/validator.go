package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	"created_at": true,
	"duration":   true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// ValidStatuses contains the valid record statuses.
var ValidStatuses = map[string]bool{
	history.StatusOK:    true,
	history.StatusError: true,
}

// ValidErrorTypes contains the error types a failed conversion can carry.
var ValidErrorTypes = map[string]bool{
	string(ltpErrors.ErrorTypeDelimiter):   true,
	string(ltpErrors.ErrorTypeCleaning):    true,
	string(ltpErrors.ErrorTypeSyntax):      true,
	string(ltpErrors.ErrorTypeTranslation): true,
	string(ltpErrors.ErrorTypeInternal):    true,
	string(ltpErrors.ErrorTypeUnknown):     true,
	"input_too_large":                      true,
	"canceled":                             true,
}

// Validate checks q against the limits in cfg. A nil cfg uses the defaults.
func Validate(q *history.Query, cfg *config.QueryConfig) error {
	if cfg == nil {
		cfg = &config.Default().History.Query
	}

	if q.Limit < 0 {
		return history.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > cfg.MaxLimit {
		return history.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", cfg.MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return history.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return history.NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return history.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return history.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}
	if q.Status != "" && !ValidStatuses[q.Status] {
		return history.NewQueryError(q, fmt.Errorf("invalid status: %s (must be 'ok' or 'error')", q.Status))
	}
	if q.ErrorType != "" && !ValidErrorTypes[q.ErrorType] {
		return history.NewQueryError(q, fmt.Errorf("invalid error type: %s", q.ErrorType))
	}
	return nil
}

// ApplyDefaults fills the limit and sort fields left empty.
func ApplyDefaults(q *history.Query, cfg *config.QueryConfig) {
	if cfg == nil {
		cfg = &config.Default().History.Query
	}
	if q.Limit == 0 {
		q.Limit = cfg.DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

// FromValues builds a query from URL-style parameters: since, until, id
// (repeatable), status, error_type, origin, input_hash, limit, offset,
// sort_by and sort_order. Times accept RFC 3339 or a duration such as
// "24h", meaning that long before now.
func FromValues(v url.Values, now time.Time) (*history.Query, error) {
	q := &history.Query{
		IDs:       v["id"],
		Status:    v.Get("status"),
		ErrorType: v.Get("error_type"),
		Origin:    v.Get("origin"),
		InputHash: v.Get("input_hash"),
		SortBy:    v.Get("sort_by"),
		SortOrder: strings.ToLower(v.Get("sort_order")),
	}

	var err error
	if q.StartTime, err = parseTime(v.Get("since"), now); err != nil {
		return nil, history.NewQueryError(q, fmt.Errorf("invalid since: %w", err))
	}
	if q.EndTime, err = parseTime(v.Get("until"), now); err != nil {
		return nil, history.NewQueryError(q, fmt.Errorf("invalid until: %w", err))
	}
	if q.Limit, err = parseInt(v.Get("limit")); err != nil {
		return nil, history.NewQueryError(q, fmt.Errorf("invalid limit: %w", err))
	}
	if q.Offset, err = parseInt(v.Get("offset")); err != nil {
		return nil, history.NewQueryError(q, fmt.Errorf("invalid offset: %w", err))
	}
	return q, nil
}

func parseTime(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		t := now.Add(-d)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC 3339 nor a duration", s)
	}
	return &t, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
