package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/telemetry/logging"
)

func testConfig(dir string) *config.WatchConfig {
	return &config.WatchConfig{
		Dir:         dir,
		Extensions:  []string{".tex"},
		Suffix:      ".solver",
		ErrorSuffix: ".err",
		Debounce:    20 * time.Millisecond,
	}
}

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New(testConfig(dir), engine.New(nil, engine.WithLogger(logging.Discard())), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return strings.TrimSpace(string(data))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	src := filepath.Join(dir, "eq.tex")

	writeFile(t, src, `\frac{2}{3}`+"\n")
	res, err := w.ProcessFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if res.Err != nil {
		t.Fatalf("conversion error = %v", res.Err)
	}
	if got := readFile(t, filepath.Join(dir, "eq.solver")); got != "{{2}/{3}}" {
		t.Errorf("eq.solver = %q, want %q", got, "{{2}/{3}}")
	}

	writeFile(t, src, `\textcolor{primary}{2x+3`)
	res, err = w.ProcessFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if res.Err == nil {
		t.Fatal("conversion error = nil, want failure")
	}
	if got := readFile(t, filepath.Join(dir, "eq.err")); got != "Error: Missing closing brace: {2x+3" {
		t.Errorf("eq.err = %q", got)
	}
	if exists(filepath.Join(dir, "eq.solver")) {
		t.Error("stale eq.solver left after failure")
	}

	writeFile(t, src, `x+1`)
	if _, err := w.ProcessFile(context.Background(), src); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if exists(filepath.Join(dir, "eq.err")) {
		t.Error("stale eq.err left after success")
	}
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	hidden := filepath.Join(dir, ".hidden")
	for _, d := range []string{sub, hidden} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(dir, "a.tex"), `x`)
	writeFile(t, filepath.Join(sub, "b.TEX"), `y`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `z`)
	writeFile(t, filepath.Join(hidden, "c.tex"), `w`)

	n, err := newTestWatcher(t, dir).ConvertAll(context.Background())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ConvertAll() = %d, want 2", n)
	}
	if !exists(filepath.Join(sub, "b.solver")) {
		t.Error("sub/b.solver not written")
	}
	if exists(filepath.Join(hidden, "c.solver")) || exists(filepath.Join(dir, "notes.solver")) {
		t.Error("ignored file was converted")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "initial.tex"), `\sqrt{x}`)

	w := newTestWatcher(t, dir)
	results := make(chan Result, 16)
	w.OnResult = func(r Result) { results <- r }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor := func(name string) Result {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case r := <-results:
				if filepath.Base(r.Source) == name {
					return r
				}
			case <-timeout:
				t.Fatalf("no result for %s", name)
			}
		}
	}

	waitFor("initial.tex")
	if !exists(filepath.Join(dir, "initial.solver")) {
		t.Error("initial.solver not written on startup")
	}

	writeFile(t, filepath.Join(dir, "new.tex"), `\frac{1}{2}`)
	r := waitFor("new.tex")
	if r.Err != nil {
		t.Errorf("new.tex conversion error = %v", r.Err)
	}
	if got := readFile(t, filepath.Join(dir, "new.solver")); got != "{{1}/{2}}" {
		t.Errorf("new.solver = %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	record := func(key string) func() {
		return func() {
			mu.Lock()
			calls[key]++
			mu.Unlock()
		}
	}

	for i := 0; i < 5; i++ {
		d.Trigger("a", record("a"))
		time.Sleep(5 * time.Millisecond)
	}
	d.Trigger("b", record("b"))

	deadline := time.Now().Add(2 * time.Second)
	for d.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	if calls["a"] != 1 || calls["b"] != 1 {
		t.Errorf("calls = %v, want one per key", calls)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var fired atomic.Bool
	d.Trigger("a", func() { fired.Store(true) })
	d.Stop()
	d.Trigger("a", func() { fired.Store(true) })
	d.Stop()

	if fired.Load() {
		t.Error("callback fired after Stop")
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}
