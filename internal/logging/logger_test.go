package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("file message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "marquee.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "file message") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPromotesComponentAndCorrelation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "0123456789abcdef")
	ctx = services.WithQuery(ctx, "The Dark Knight")
	scoped := logging.WithContext(ctx, logging.NewComponentLogger(logger, "web"))
	scoped.Info("recommendation served", logging.Int("count", 6))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"INFO  web [01234567] recommendation served", `query="The Dark Knight"`, "count=6"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("expected component promoted out of key/value pairs, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "json message" || entry["k"] != "v" {
		t.Fatalf("unexpected json entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

type captureHandler struct {
	records []slog.Record
	attrs   []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = append(h.attrs, attrs...)
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "req-xyz")
	ctx = services.WithQuery(ctx, "Avatar")

	handler := &captureHandler{}
	logging.WithContext(ctx, slog.New(handler)).Info("contextual log")

	if len(handler.records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(handler.records))
	}
	got := map[string]string{}
	for _, attr := range handler.attrs {
		got[attr.Key] = attr.Value.String()
	}
	if got[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("correlation id = %q", got[logging.FieldCorrelationID])
	}
	if got[logging.FieldQuery] != "Avatar" {
		t.Fatalf("query = %q", got[logging.FieldQuery])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	handler := &captureHandler{}
	logging.WarnWithContext(slog.New(handler), "poster missing", "enrichment_failed",
		logging.String(logging.FieldImpact, "card shows placeholder"),
		logging.Error(errors.New("boom")),
	)

	if len(handler.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(handler.records))
	}
	got := map[string]string{}
	handler.records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	if got[logging.FieldEventType] != "enrichment_failed" {
		t.Fatalf("event_type = %q", got[logging.FieldEventType])
	}
	if got[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error hint")
	}
	if got[logging.FieldImpact] != "card shows placeholder" {
		t.Fatalf("impact should not be overridden, got %q", got[logging.FieldImpact])
	}
}
