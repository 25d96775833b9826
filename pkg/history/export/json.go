package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/texsolve/pkg/history"
)

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w as a JSON array, "[]" when empty.
func (e *JSONExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	if records == nil {
		records = []*history.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return history.NewExportError("json", len(records), err)
	}
	return nil
}

// JSONLinesExporter exports one JSON object per line.
type JSONLinesExporter struct{}

// Export writes each record to w as a single line of JSON.
func (JSONLinesExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return history.NewExportError("jsonl", i, err)
		}
		if err := enc.Encode(record); err != nil {
			return history.NewExportError("jsonl", i, err)
		}
	}
	return nil
}
