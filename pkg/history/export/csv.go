package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/texsolve/pkg/history"
)

// CSVExporter exports records as CSV.
type CSVExporter struct {
	// IncludeHeader writes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "request_id", "origin", "created_at", "status", "error_type", "error_message",
	"clean_passes", "duration_ms", "input_hash", "input", "cleaned", "output",
}

// Export writes records to w, flushing every 100 rows.
func (e *CSVExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return history.NewExportError("csv", i, err)
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return history.NewExportError("csv", i, err)
		}
		if (i+1)%100 == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return history.NewExportError("csv", i, err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return history.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(r *history.Record) []string {
	return []string{
		r.ID,
		r.RequestID,
		r.Origin,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Status,
		r.ErrorType,
		r.ErrorMessage,
		strconv.Itoa(r.CleanPasses),
		strconv.FormatFloat(float64(r.Duration)/float64(time.Millisecond), 'f', 3, 64),
		r.InputHash,
		r.Input,
		r.Cleaned,
		r.Output,
	}
}
