package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/shelter/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	log := NewLogger(&buf, cfg, NewLoggerService(cfg))

	log.Info().Msg("dropped")
	log.Warn().Str("op", "read").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "read", entry["op"])
	assert.Equal(t, "shelter", entry["service"])
	assert.Equal(t, "development", entry["environment"])
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "shelter.log")

	var buf bytes.Buffer
	log := NewLogger(&buf, cfg, nil)
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.FileExists(t, cfg.Logging.File)
}

func TestLoggerServiceDisabled(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, svc.GetApplication())

	var nilSvc *LoggerService
	assert.Nil(t, nilSvc.GetApplication())
	nilSvc.Shutdown()
}

func TestWithTraceContextNilTransaction(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	log := WithTraceContext(base, nil)
	log.Info().Msg("x")

	assert.NotContains(t, buf.String(), "trace.id")
}

func TestGetMongoCommandLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, GetMongoCommandLogLevel(zerolog.DebugLevel))
	assert.Equal(t, zerolog.DebugLevel, GetMongoCommandLogLevel(zerolog.InfoLevel))
	assert.Equal(t, zerolog.Disabled, GetMongoCommandLogLevel(zerolog.ErrorLevel))
}
