package query

import (
	"net/url"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
)

func TestValidate(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name    string
		query   history.Query
		wantErr bool
	}{
		{"empty", history.Query{}, false},
		{"full", history.Query{Limit: 10, Offset: 5, SortBy: "duration", SortOrder: "asc", Status: "error", ErrorType: "syntax"}, false},
		{"negative limit", history.Query{Limit: -1}, true},
		{"limit too large", history.Query{Limit: 10001}, true},
		{"negative offset", history.Query{Offset: -1}, true},
		{"bad sort field", history.Query{SortBy: "input"}, true},
		{"bad sort order", history.Query{SortOrder: "up"}, true},
		{"inverted range", history.Query{StartTime: &start, EndTime: &end}, true},
		{"bad status", history.Query{Status: "blocked"}, true},
		{"bad error type", history.Query{ErrorType: "network"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := Validate(&q, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &config.QueryConfig{DefaultLimit: 25, MaxLimit: 50}
	q := &history.Query{}
	ApplyDefaults(q, cfg)

	if q.Limit != 25 || q.SortBy != "created_at" || q.SortOrder != "desc" {
		t.Errorf("ApplyDefaults() = %+v, want limit 25 sorted by created_at desc", q)
	}

	q = &history.Query{Limit: 60}
	ApplyDefaults(q, cfg)
	if err := Validate(q, cfg); err == nil {
		t.Error("Validate() error = nil, want limit over max")
	}
}

func TestFromValues(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	v := url.Values{
		"since":      {"24h"},
		"until":      {"2026-03-10T11:00:00Z"},
		"id":         {"a", "b"},
		"status":     {"error"},
		"error_type": {"delimiter"},
		"limit":      {"5"},
		"offset":     {"10"},
		"sort_order": {"ASC"},
	}

	q, err := FromValues(v, now)
	if err != nil {
		t.Fatalf("FromValues() error = %v", err)
	}
	if q.StartTime == nil || !q.StartTime.Equal(now.Add(-24*time.Hour)) {
		t.Errorf("StartTime = %v, want %v", q.StartTime, now.Add(-24*time.Hour))
	}
	if q.EndTime == nil || !q.EndTime.Equal(now.Add(-time.Hour)) {
		t.Errorf("EndTime = %v, want %v", q.EndTime, now.Add(-time.Hour))
	}
	if len(q.IDs) != 2 || q.Status != "error" || q.ErrorType != "delimiter" {
		t.Errorf("filters = %+v", q)
	}
	if q.Limit != 5 || q.Offset != 10 || q.SortOrder != "asc" {
		t.Errorf("pagination = limit %d offset %d order %q", q.Limit, q.Offset, q.SortOrder)
	}

	bad := []url.Values{
		{"since": {"yesterday"}},
		{"until": {"2026-13-01"}},
		{"limit": {"ten"}},
		{"offset": {"1.5"}},
	}
	for _, v := range bad {
		if _, err := FromValues(v, now); err == nil {
			t.Errorf("FromValues(%v) error = nil, want error", v)
		}
	}
}
