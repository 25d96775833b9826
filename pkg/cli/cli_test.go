package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/ltp"
)

func TestExitCode(t *testing.T) {
	_, convErr := ltp.New(ltp.Options{}).Convert(`\textcolor{primary}{2x+3`)
	if convErr == nil {
		t.Fatal("Convert() error = nil, want delimiter error")
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", NewUsageError("bad flag %q", "--x"), ExitUsage},
		{"config", NewConfigError("server.port", "out of range"), ExitUsage},
		{"validation", fmt.Errorf("load: %w", config.ValidationError{Errors: []config.FieldError{{Field: "x"}}}), ExitUsage},
		{"conversion", convErr, ExitFailure},
		{"wrapped command", NewCommandError("serve", errors.New("boom")), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	_, convErr := ltp.New(ltp.Options{}).Convert(`\textcolor{primary}{2x+3`)
	if got, want := Message(convErr), "Error: Missing closing brace: {2x+3"; got != want {
		t.Errorf("Message(conversion) = %q, want %q", got, want)
	}
	if got, want := Message(errors.New("boom")), "Error: boom"; got != want {
		t.Errorf("Message(plain) = %q, want %q", got, want)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("listen failed")
	err := NewCommandError("serve", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(CommandError, cause) = false, want true")
	}
	if got, want := err.Error(), "command serve failed: listen failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		allowed []OutputFormat
		want    OutputFormat
		wantErr bool
	}{
		{"", nil, FormatText, false},
		{"json", nil, FormatJSON, false},
		{"CSV", nil, FormatCSV, false},
		{"csv", []OutputFormat{FormatText, FormatJSON}, "", true},
		{"xml", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in, tt.allowed...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if err != nil && ExitCode(err) != ExitUsage {
				t.Errorf("ExitCode(ParseFormat error) = %d, want %d", ExitCode(err), ExitUsage)
			}
		})
	}
}

func sampleTable() *Table {
	table := &Table{Headers: []string{"id", "output"}}
	table.AddRow("a", "{{2}/{3}}")
	table.AddRow("b", "x,y")
	return table
}

func TestTextFormatterTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "id  ") {
		t.Errorf("header = %q, want aligned columns", lines[0])
	}
	if strings.Index(lines[0], "output") != strings.Index(lines[1], "{{2}/{3}}") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTextFormatterScalar(t *testing.T) {
	out, err := NewFormatter(FormatText).Format("{{2}/{3}}")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got, want := string(out), "{{2}/{3}}\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewFormatter(FormatCSV).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "id,output\na,{{2}/{3}}\nb,\"x,y\"\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	if _, err := NewFormatter(FormatCSV).Format("scalar"); err == nil {
		t.Error("Format(scalar) error = nil, want error")
	}
}

func TestJSONFormatterTable(t *testing.T) {
	out, err := NewFormatter(FormatJSON).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var rows []map[string]string
	if err := json.Unmarshal(out, &rows); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(rows) != 2 || rows[0]["output"] != "{{2}/{3}}" || rows[1]["id"] != "b" {
		t.Errorf("rows = %v", rows)
	}
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)
	p.Start(4)
	p.Update(2)
	p.Finish()

	out := buf.String()
	for _, want := range []string{"50.0% (2/4)", "100.0% (4/4)", "files/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	p.Error(errors.New("read failed"))
	if !strings.Contains(buf.String(), "read failed") {
		t.Errorf("Error() output = %q", buf.String())
	}
}

func TestSignalContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled with parent")
	}
}

func TestSignalContextSIGTERM(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Skipf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled on SIGTERM")
	}
}
