package export

import (
	"fmt"

	"mercator-hq/texsolve/pkg/history"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "jsonl", "csv"}

// New returns the exporter for format.
func New(format string, pretty bool) (history.Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONExporter(pretty), nil
	case "jsonl":
		return JSONLinesExporter{}, nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, history.NewExportError(format, 0, fmt.Errorf("unsupported format %q (want one of %v)", format, Formats))
	}
}
