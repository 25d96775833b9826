package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/history"
)

func sampleRecords() []*history.Record {
	created := time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)
	return []*history.Record{
		{
			ID: "a", RequestID: "req-a", Origin: "cli", Status: history.StatusOK,
			Input: `\frac{1}{2}`, Output: "(1)/(2)", CleanPasses: 1,
			Duration: 1500 * time.Microsecond, CreatedAt: created,
		},
		{
			ID: "b", RequestID: "req-b", Origin: "http", Status: history.StatusError,
			ErrorType: "delimiter", ErrorMessage: "missing closing brace, \"quoted\"",
			Input: `\frac{1`, CreatedAt: created.Add(time.Second),
		},
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(true).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got []history.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[1].ErrorType != "delimiter" {
		t.Errorf("decoded = %+v", got)
	}

	buf.Reset()
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export(nil) error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Export(nil) = %q, want []", got)
	}
}

func TestJSONLinesExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONLinesExporter{}).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var r history.Record
	if err := json.Unmarshal([]byte(lines[0]), &r); err != nil || r.ID != "a" {
		t.Errorf("line 0 = %q (err %v)", lines[0], err)
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(csvHeader) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "2026-04-05T06:07:08Z" {
		t.Errorf("created_at = %q", rows[1][3])
	}
	if rows[1][8] != "1.500" {
		t.Errorf("duration_ms = %q, want 1.500", rows[1][8])
	}
	if rows[2][6] != `missing closing brace, "quoted"` {
		t.Errorf("error_message = %q", rows[2][6])
	}
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		if _, err := New(f, false); err != nil {
			t.Errorf("New(%q) error = %v", f, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("New(xml) error = nil, want error")
	}
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := NewCSVExporter(false).Export(ctx, sampleRecords(), &buf); err == nil {
		t.Error("Export() with canceled context error = nil, want error")
	}
}
