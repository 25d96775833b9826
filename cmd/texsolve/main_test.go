package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/telemetry/logging"
)

// writeConfig writes a config that keeps history and logs inside t's
// temporary directory.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "texsolve.yaml")
	data := `history:
  backend: sqlite
  sqlite:
    path: ` + filepath.Join(dir, "history.db") + `
telemetry:
  logging:
    level: error
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// run executes the command line and returns stdout, stderr and the exit code.
func run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestConvertArgument(t *testing.T) {
	cfg := writeConfig(t)

	stdout, stderr, code := run(t, "", "--config", cfg, "convert", `\frac{2}{3}`)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, cli.ExitOK, stderr)
	}
	if stdout != "{{2}/{3}}\n" {
		t.Errorf("stdout = %q, want %q", stdout, "{{2}/{3}}\n")
	}
}

func TestConvertFailure(t *testing.T) {
	cfg := writeConfig(t)

	stdout, stderr, code := run(t, "", "--config", cfg, "convert", `\textcolor{primary}{2x+3`)
	if code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if want := "Error: Missing closing brace: {2x+3\n"; stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
}

func TestConvertStdinJSON(t *testing.T) {
	cfg := writeConfig(t)

	stdout, stderr, code := run(t, "\\textcolor{primary}{2x+3}\n",
		"--config", cfg, "convert", "--stdin", "--format", "json", "--show-cleaned")
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, cli.ExitOK, stderr)
	}

	var res conversionResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, stdout)
	}
	if res.Source != "stdin" {
		t.Errorf("source = %q, want %q", res.Source, "stdin")
	}
	if res.Cleaned != "2x+3" {
		t.Errorf("cleaned = %q, want %q", res.Cleaned, "2x+3")
	}
	if res.Error != "" || res.Output == "" || res.RequestID == "" {
		t.Errorf("result = %+v, want output and request ID without error", res)
	}
}

func TestConvertJSONError(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, code := run(t, "", "--config", cfg, "convert", "--format", "json", `\textcolor{primary}{2x+3`)
	if code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}

	var res conversionResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, stdout)
	}
	if res.ErrorType != "delimiter" {
		t.Errorf("error_type = %q, want %q", res.ErrorType, "delimiter")
	}
	if res.Position == nil || *res.Position != 19 {
		t.Errorf("position = %v, want 19", res.Position)
	}
}

func TestConvertFiles(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tex")
	bad := filepath.Join(dir, "bad.tex")
	os.WriteFile(good, []byte("\\frac{2}{3}\n"), 0o644)
	os.WriteFile(bad, []byte("2+\\foo{x}\n"), 0o644)

	stdout, stderr, code := run(t, "", "--config", cfg, "convert", "--file", good, "--file", bad, "--progress")
	if code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
	if want := good + ": {{2}/{3}}\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if !strings.Contains(stderr, bad+": Error") {
		t.Errorf("stderr = %q, want error for %s", stderr, bad)
	}
	if !strings.Contains(stderr, "(2/2)") {
		t.Errorf("stderr = %q, want progress", stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"convert"}},
		{"bad format", []string{"convert", "--format", "xml", "x"}},
		{"unknown flag", []string{"convert", "--bogus", "x"}},
		{"missing file", []string{"convert", "--file"}},
		{"show needs id", []string{"history", "show"}},
		{"bad status", []string{"history", "list", "--status", "maybe"}},
		{"bad export format", []string{"history", "export", "--format", "xml"}},
		{"prune without limits", []string{"history", "prune"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg}, tt.args...)
			_, stderr, code := run(t, "", args...)
			if code != cli.ExitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, cli.ExitUsage, stderr)
			}
			if !strings.HasPrefix(stderr, "Error: ") {
				t.Errorf("stderr = %q, want Error: prefix", stderr)
			}
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("converter:\n  max_clean_passes: -1\n"), 0o644)

	_, _, code := run(t, "", "--config", path, "convert", "x")
	if code != cli.ExitUsage {
		t.Errorf("exit code = %d, want %d", code, cli.ExitUsage)
	}
}

func TestClean(t *testing.T) {
	cfg := writeConfig(t)

	stdout, stderr, code := run(t, "", "--config", cfg, "clean", `\textcolor{primary}{2x+3}`)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, cli.ExitOK, stderr)
	}
	if stdout != "2x+3\n" {
		t.Errorf("stdout = %q, want %q", stdout, "2x+3\n")
	}

	_, stderr, code = run(t, "", "--config", cfg, "clean", `\textcolor{10x+3}`)
	if code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
	if !strings.HasPrefix(stderr, "Error") {
		t.Errorf("stderr = %q, want an error message", stderr)
	}
}

func TestHistoryCommands(t *testing.T) {
	cfg := writeConfig(t)

	run(t, "", "--config", cfg, "convert", `\frac{2}{3}`)
	run(t, "", "--config", cfg, "convert", `\textcolor{primary}{2x+3`)

	stdout, stderr, code := run(t, "", "--config", cfg, "history", "list", "--format", "json")
	if code != cli.ExitOK {
		t.Fatalf("history list exit code = %d (stderr: %s)", code, stderr)
	}
	var listed struct {
		Records []*history.Record `json:"records"`
		Total   int64             `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, stdout)
	}
	if listed.Total != 2 || len(listed.Records) != 2 {
		t.Fatalf("total = %d, records = %d, want 2 and 2", listed.Total, len(listed.Records))
	}
	for _, rec := range listed.Records {
		if rec.Origin != "cli" {
			t.Errorf("origin = %q, want %q", rec.Origin, "cli")
		}
	}

	stdout, _, code = run(t, "", "--config", cfg, "history", "list", "--status", "error", "--format", "csv")
	if code != cli.ExitOK {
		t.Fatalf("history list csv exit code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "id,created_at") || !strings.Contains(lines[1], "delimiter") {
		t.Errorf("csv = %q, want header and one delimiter row", stdout)
	}

	var okID string
	for _, rec := range listed.Records {
		if rec.Status == history.StatusOK {
			okID = rec.ID
		}
	}
	stdout, _, code = run(t, "", "--config", cfg, "history", "show", okID)
	if code != cli.ExitOK || !strings.Contains(stdout, "{{2}/{3}}") {
		t.Errorf("history show = %q (exit %d), want the output", stdout, code)
	}

	_, stderr, code = run(t, "", "--config", cfg, "history", "show", "missing")
	if code != cli.ExitFailure || !strings.Contains(stderr, "missing") {
		t.Errorf("history show missing: exit %d, stderr %q", code, stderr)
	}

	exportPath := filepath.Join(t.TempDir(), "out.jsonl")
	_, _, code = run(t, "", "--config", cfg, "history", "export", "--format", "jsonl", "-o", exportPath)
	if code != cli.ExitOK {
		t.Fatalf("history export exit code = %d", code)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("exported %d lines, want 2", n)
	}

	stdout, _, code = run(t, "", "--config", cfg, "history", "prune", "--max-records", "1")
	if code != cli.ExitOK || stdout != "✓ Pruned 1 records\n" {
		t.Errorf("history prune = %q (exit %d)", stdout, code)
	}

	stdout, _, _ = run(t, "", "--config", cfg, "history", "list", "--format", "json")
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("total after prune = %d, want 1", listed.Total)
	}
}

func TestHistoryDisabled(t *testing.T) {
	cfg := writeConfig(t)
	t.Setenv("TEXSOLVE_HISTORY_ENABLED", "false")

	if _, _, code := run(t, "", "--config", cfg, "convert", "x"); code != cli.ExitOK {
		t.Errorf("convert exit code = %d, want %d", code, cli.ExitOK)
	}
	if _, _, code := run(t, "", "--config", cfg, "history", "list"); code != cli.ExitUsage {
		t.Errorf("history list exit code = %d, want %d", code, cli.ExitUsage)
	}
}

func TestWatchOnce(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.tex"), []byte(`\frac{2}{3}`), 0o644)
	os.WriteFile(filepath.Join(dir, "b.tex"), []byte(`\textcolor{primary}{2x+3`), 0o644)

	stdout, stderr, code := run(t, "", "--config", cfg, "watch", dir, "--once")
	if code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
	if !strings.Contains(stdout, "a.solver") {
		t.Errorf("stdout = %q, want a.solver", stdout)
	}
	if !strings.Contains(stderr, "b.tex: Error: Missing closing brace") {
		t.Errorf("stderr = %q, want b.tex failure", stderr)
	}

	got, err := os.ReadFile(filepath.Join(dir, "a.solver"))
	if err != nil {
		t.Fatalf("ReadFile(a.solver) error = %v", err)
	}
	if string(got) != "{{2}/{3}}\n" {
		t.Errorf("a.solver = %q, want %q", got, "{{2}/{3}}\n")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.err")); err != nil {
		t.Errorf("b.err missing: %v", err)
	}
}

func TestServeDryRun(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, code := run(t, "", "--config", cfg, "serve", "--dry-run")
	if code != cli.ExitOK || !strings.Contains(stdout, "Configuration valid") {
		t.Errorf("serve --dry-run = %q (exit %d)", stdout, code)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	cfg := writeConfig(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfg, "serve", "--listen", "127.0.0.1:0"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve error = %v (stderr: %s)", err, stderr.String())
	}
	for _, want := range []string{"Server listening on 127.0.0.1:", "/healthz", "Server stopped"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestVersion(t *testing.T) {
	stdout, _, code := run(t, "", "version")
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout, "texsolve "+Version+"\n") {
		t.Errorf("stdout = %q", stdout)
	}
	if want := "Go Version: " + runtime.Version() + "\n"; !strings.Contains(stdout, want) {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if want := "OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH + "\n"; !strings.Contains(stdout, want) {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestPipelineRecordsAndCloses(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	opts := &rootOptions{cfg: cfg, logger: logging.Discard()}

	pipe, err := opts.newPipeline(nil, nil)
	if err != nil {
		t.Fatalf("newPipeline() error = %v", err)
	}
	if pipe.store == nil || pipe.recorder == nil {
		t.Fatal("newPipeline() did not open history")
	}
	if _, err := pipe.engine.Convert(context.Background(), engine.Request{Input: `\ln{x}`, Origin: engine.OriginCLI}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if err := pipe.recorder.Close(); err != nil {
		t.Fatalf("recorder Close() error = %v", err)
	}

	n, err := pipe.store.Count(context.Background(), &history.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if err := pipe.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPipelineWithoutHistory(t *testing.T) {
	cfg := config.Default()
	disabled := false
	cfg.History.Enabled = &disabled
	opts := &rootOptions{cfg: cfg, logger: logging.Discard()}

	pipe, err := opts.newPipeline(nil, nil)
	if err != nil {
		t.Fatalf("newPipeline() error = %v", err)
	}
	if pipe.store != nil || pipe.recorder != nil {
		t.Error("newPipeline() opened history while disabled")
	}
	if err := pipe.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
