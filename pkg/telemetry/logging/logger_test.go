package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "info", Format: "json"},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "valid console config",
			config: Config{Level: "warn", Format: "console"},
		},
		{
			name:   "defaults",
			config: Config{},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("filtered messages were written: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected messages missing: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithOrigin(ctx, "http")
	logger.InfoContext(ctx, "converted", "status", "ok")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry["request_id"])
	}
	if entry["origin"] != "http" {
		t.Errorf("origin = %v, want http", entry["origin"])
	}
	if entry["status"] != "ok" {
		t.Errorf("status = %v, want ok", entry["status"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Format: "json", Writer: buf})

	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext with empty context should return the same logger")
	}

	ctx := WithTraceID(context.Background(), "abc")
	logger.WithContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), `"trace_id":"abc"`) {
		t.Errorf("trace_id missing: %s", buf.String())
	}
}

func TestContextGetters(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetOrigin(ctx) != "" || GetTraceID(ctx) != "" {
		t.Error("empty context returned values")
	}

	ctx = WithRequestID(ctx, "r")
	ctx = WithOrigin(ctx, "cli")
	ctx = WithTraceID(ctx, "t")
	if got := Fields(ctx); len(got) != 6 {
		t.Errorf("Fields() = %v, want 3 pairs", got)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}
