package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/coinalert/pkg/logger"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "debug", "2006-01-02", false, true)
	require.NoError(t, err)

	adapter := NewAdapter(log.Logger)
	adapter.WithField("symbol", "BTC").WithError(errors.New("boom")).Warn("quote unavailable")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "quote unavailable", entry["message"])
	assert.Equal(t, "BTC", entry["symbol"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info", "15:04:05", false, false)
	require.NoError(t, err)

	NewAdapter(log.Logger).WithFields(map[string]any{"user": 42}).Info("delivered")
	assert.Contains(t, buf.String(), "delivered")
	assert.Contains(t, buf.String(), "user=42")
}

func TestNewWithWriter_InvalidLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "verbose", "", false, false)
	require.Error(t, err)
}

func TestLevelConversion(t *testing.T) {
	for _, level := range []logger.Level{logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel} {
		assert.Equal(t, level, toLevel(toZerologLevel(level)))
	}
	assert.Equal(t, logger.NoLevel, toLevel(zerolog.NoLevel))
	assert.Equal(t, zerolog.NoLevel, toZerologLevel(logger.NoLevel))
}
