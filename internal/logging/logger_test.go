package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mmove/internal/config"
	"mmove/internal/logging"
	"mmove/internal/services"
)

func TestFileOutputIsJSON(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "info"
	var console bytes.Buffer

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  "console",
		Console: &console,
		File:    &logging.FileOptions{Path: cfg.LogFile(), MaxSizeMB: 1},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("walk finished", logging.Int("inserted", 3))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "mmove.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode log record %q: %v", data, err)
	}
	if record["msg"] != "walk finished" || record["level"] != "info" {
		t.Fatalf("unexpected record: %v", record)
	}
	if !strings.Contains(console.String(), "walk finished inserted=3") {
		t.Fatalf("unexpected console output %q", console.String())
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentAndPhase(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithPhase(context.Background(), "move")
	ctx = services.WithRunID(ctx, "run-1")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "organizer"))
	logger.Info("item moved", logging.String("path", "/music/Rock-1990/Album A"))

	line := buf.String()
	if !strings.Contains(line, " INFO organizer [move]: item moved") {
		t.Fatalf("unexpected header in %q", line)
	}
	if !strings.Contains(line, `path="/music/Rock-1990/Album A"`) {
		t.Fatalf("expected quoted path in %q", line)
	}
	if !strings.Contains(line, "run_id=run-1") {
		t.Fatalf("expected run id in %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "junk delete failed", "junk_delete_failed",
		logging.String(logging.FieldErrorHint, "check permissions"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "junk_delete_failed" {
		t.Fatalf("missing event type: %v", record)
	}
	if record[logging.FieldErrorHint] != "check permissions" {
		t.Fatalf("error hint overwritten: %v", record)
	}
	if record[logging.FieldImpact] == nil {
		t.Fatalf("expected default impact: %v", record)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.ErrorWithContext(nil, "ignored", "noop")
}

func TestNewFromConfigNil(t *testing.T) {
	logger, err := logging.NewFromConfig(nil)
	if err != nil || logger == nil {
		t.Fatalf("NewFromConfig(nil) = %v, %v", logger, err)
	}
}
