package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferLogger(buf *bytes.Buffer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// Feature: nana-store, Property 16: Production log lines are structured JSON
// Validates: Logging
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry carries level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := bufferLogger(&buf)

			switch level {
			case "debug":
				logger.Debug(message, zap.String("order_id", "o-1"))
			case "warn":
				logger.Warn(message, zap.String("order_id", "o-1"))
			case "error":
				logger.Error(message, zap.String("order_id", "o-1"))
			default:
				logger.Info(message, zap.String("order_id", "o-1"))
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			_, hasTime := entry["timestamp"]
			return entry["level"] == level && hasTime && entry["message"] == message && entry["order_id"] == "o-1"
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorEntriesCarryStacktrace(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).Error("inventory not restored", zap.String("order_id", "o-2"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotEmpty(t, entry["stacktrace"])
}

func TestConfig(t *testing.T) {
	prod, err := config("production", "")
	require.NoError(t, err)
	assert.Equal(t, "json", prod.Encoding)
	assert.Equal(t, []string{"stdout"}, prod.OutputPaths)
	assert.Equal(t, zapcore.InfoLevel, prod.Level.Level())
	assert.Equal(t, "nana-store", prod.InitialFields["service"])

	dev, err := config("development", "warn")
	require.NoError(t, err)
	assert.Equal(t, "console", dev.Encoding)
	assert.Equal(t, zapcore.WarnLevel, dev.Level.Level())

	_, err = config("production", "loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, logger)
	}

	_, err := NewWithLevel("production", "loud")
	assert.Error(t, err)
}

func TestNewWithDefaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "")
	t.Setenv("LOG_LEVEL", "not-a-level")

	assert.NotNil(t, NewWithDefaults())
}
