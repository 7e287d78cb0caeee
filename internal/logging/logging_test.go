// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danniesim/mecoai-chat/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "test.log")
	cfg.Log.Level = "debug"

	logger, closeFn, err := New(cfg, Options{})
	require.NoError(t, err)
	logger.Debug("hello", zap.String("conversation_id", "c1"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "c1", entry["conversation_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestConsoleCore(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "c.log")
	var buf bytes.Buffer

	logger, closeFn, err := New(cfg, Options{Console: true, Stderr: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("to console")
	logger.Debug("filtered")
	assert.Contains(t, buf.String(), "to console")
	assert.NotContains(t, buf.String(), "filtered")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWriterAndOrNop(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, zapcore.InfoLevel).Info("x")
	assert.Contains(t, buf.String(), `"msg":"x"`)

	assert.NotNil(t, OrNop(nil))
}
