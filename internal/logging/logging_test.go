package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Format: "json"})
	log.Info("calling",
		"api_key", "gsk_abcdefghijklmnop",
		"header", "Bearer sk-1234567890abcd",
		"value", "sk-zzzzzzzzzzzzzz",
		"question", "Siapa pelanggan TRX001?")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "gsk_***mnop", rec["api_key"])
	assert.Equal(t, "Bearer sk-1***abcd", rec["header"])
	assert.Equal(t, "sk-z***zzzz", rec["value"])
	assert.Equal(t, "Siapa pelanggan TRX001?", rec["question"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "warn"})
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "corpusqa.log")
	log, closeFn, err := New(Config{File: path})
	require.NoError(t, err)
	log.Info("ready", "fragments", 12)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fragments=12")
}
