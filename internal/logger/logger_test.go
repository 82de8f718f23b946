package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"stock-ledger/internal/config"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Feature: stock-ledger, Property 12: File log entries are structured
func TestProperty_FileEntriesAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry is one JSON object with level, ts and msg", prop.ForAll(
		func(message string, level string, productID int) bool {
			var buf bytes.Buffer
			logger := zap.New(newJSONCore(zapcore.AddSync(&buf), zapcore.DebugLevel))
			defer logger.Sync()

			field := zap.Int("product_id", productID)
			switch level {
			case "debug":
				logger.Debug(message, field)
			case "warn":
				logger.Warn(message, field)
			case "error":
				logger.Error(message, field)
			default:
				logger.Info(message, field)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			for _, key := range []string{"level", "ts", "msg", "product_id"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}

			return entry["msg"] == message && entry["level"] == level
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
		gen.IntRange(1, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductionLoggerBuilds(t *testing.T) {
	logger, err := New("production", config.LogConfig{})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
}

func TestLogsAreMirroredToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")

	logger, err := New("production", config.LogConfig{File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("stock adjusted", zap.Int("product_id", 7))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("Log file entry is not JSON: %v", err)
	}
	if entry["msg"] != "stock adjusted" {
		t.Errorf("unexpected message: %v", entry["msg"])
	}
	if entry["product_id"] != float64(7) {
		t.Errorf("unexpected product_id: %v", entry["product_id"])
	}
}
