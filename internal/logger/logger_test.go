package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)

	return zap.New(core)
}

// Every entry is a JSON object with level, timestamp and message
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := newBufferedLogger(&buf)

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			if logEntry["level"] != level {
				return false
			}
			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}
			return logEntry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ErrorLogsIncludeContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error logs include context information", prop.ForAll(
		func(message string, errorMsg string) bool {
			var buf bytes.Buffer
			logger := newBufferedLogger(&buf)

			logger.Error(message, zap.String("error", errorMsg), zap.Int64("product_id", 7))

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			return logEntry["error"] == errorMsg && logEntry["product_id"] == float64(7)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "production default level", env: "production", level: "", wantLevel: zapcore.InfoLevel},
		{name: "development debug", env: "development", level: "debug", wantLevel: zapcore.DebugLevel},
		{name: "production warn", env: "production", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "unknown level", env: "production", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for invalid level")
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}

			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected %s to be disabled", tt.wantLevel-1)
			}
		})
	}
}
