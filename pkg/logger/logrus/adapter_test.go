package logrus

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/coinalert/pkg/logger"
)

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", "2006-01-02 15:04:05", true)
	require.NoError(t, err)

	log.Debug("hidden")
	log.WithFields(map[string]any{"user": 7, "symbol": "ETH"}).Info("sent 1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sent 1", entry["msg"])
	assert.Equal(t, "ETH", entry["symbol"])
	assert.EqualValues(t, 7, entry["user"])

	log.SetLevel(logger.WarnLevel)
	assert.Equal(t, logger.WarnLevel, log.GetLevel())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "", false)
	require.Error(t, err)
}
