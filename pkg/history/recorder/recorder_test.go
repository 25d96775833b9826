package recorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/history/storage"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
)

func testConfig() *config.RecorderConfig {
	return &config.RecorderConfig{
		AsyncBuffer:    16,
		WriteTimeout:   time.Second,
		MaxFieldLength: 16,
	}
}

func TestRecorder_RecordAndClose(t *testing.T) {
	store := storage.NewMemoryStorage()
	collector := metrics.NewCollector(&config.MetricsConfig{}, prometheus.NewRegistry())
	rec := New(store, testConfig(), collector)

	for i := 0; i < 10; i++ {
		err := rec.Record(context.Background(), &history.Record{
			RequestID: "req",
			Origin:    "test",
			Input:     `\sqrt{x}`,
			Output:    "sqrt(x)",
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := store.Size(); got != 10 {
		t.Errorf("stored records = %d, want 10", got)
	}

	expected := `
# HELP texsolve_history_writes_total Total number of history writes by result
# TYPE texsolve_history_writes_total counter
texsolve_history_writes_total{result="ok"} 10
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "texsolve_history_writes_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestRecorder_PreparesRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, testConfig(), nil)

	input := strings.Repeat("a", 40)
	r := &history.Record{Input: input, ErrorType: "syntax", ErrorMessage: "bad"}
	if err := rec.Record(context.Background(), r); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rec.Close()

	got, err := store.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", r.ID, err)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Errorf("record ID/CreatedAt not assigned: %+v", got)
	}
	if got.Status != history.StatusError {
		t.Errorf("Status = %q, want %q", got.Status, history.StatusError)
	}
	if got.InputHash != HashString(input) {
		t.Errorf("InputHash = %q, want hash of full input", got.InputHash)
	}
	if len(got.Input) != 16 || !strings.HasSuffix(got.Input, "...") {
		t.Errorf("Input = %q, want truncated to 16 bytes", got.Input)
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	rec := New(storage.NewMemoryStorage(), testConfig(), nil)
	rec.Close()
	rec.Close()

	err := rec.Record(context.Background(), &history.Record{Input: "x"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Record() after Close error = %v, want ErrClosed", err)
	}
}

type failingStorage struct {
	history.Storage
}

func (failingStorage) Store(ctx context.Context, record *history.Record) error {
	return errors.New("disk full")
}

func TestRecorder_StoreFailure(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{}, prometheus.NewRegistry())
	rec := New(failingStorage{storage.NewMemoryStorage()}, testConfig(), collector)

	if err := rec.Record(context.Background(), &history.Record{Input: "x"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rec.Close()

	expected := `
# HELP texsolve_history_writes_total Total number of history writes by result
# TYPE texsolve_history_writes_total counter
texsolve_history_writes_total{result="error"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "texsolve_history_writes_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"abcdefghijkl", 8, "abcde..."},
		{"abcdef", 0, "abcdef"},
		{"abcdef", 2, "ab"},
		{"ééééé", 6, "é..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestHashContent(t *testing.T) {
	if got := HashContent(nil); got != "" {
		t.Errorf("HashContent(nil) = %q, want empty", got)
	}
	const wantABC = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashString("abc"); got != wantABC {
		t.Errorf("HashString(abc) = %q, want %q", got, wantABC)
	}
}
