package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelWarn, Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	logger.Warn("file skipped", "path", "src/Bad.jsx")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "file skipped", entry["msg"])
	assert.Equal(t, "src/Bad.jsx", entry["path"])
}

func TestNewLogger_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelDebug, Output: &buf})
	logger.Debug("walking", "root", "/tmp/app")
	assert.Contains(t, buf.String(), "msg=walking")
	assert.Contains(t, buf.String(), "root=/tmp/app")
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("INFO")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestParseLogFormat(t *testing.T) {
	f, err := ParseLogFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseLogFormat("xml")
	assert.Error(t, err)
}
