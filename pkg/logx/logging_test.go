package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info").With(String("comp", "test"))

	log.Debug("hidden")
	log.Info("hello", Int("n", 3), Duration("d", time.Second), Err(errors.New("boom")))

	var m map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	assert.Equal(t, "hello", m["message"])
	assert.Equal(t, "test", m["comp"])
	assert.Equal(t, float64(3), m["n"])
	assert.Equal(t, "boom", m["err"])
	assert.Contains(t, m["caller"], "logging_test.go")

	assert.False(t, log.Enabled(LevelDebug))
	assert.True(t, log.Enabled(LevelWarn))
}

func TestZeroLoggerIsNop(t *testing.T) {
	var log Logger
	assert.True(t, log.IsZero())
	log.Info("nothing happens")
	assert.False(t, Nop().IsZero())
}

func TestServiceApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadr.log")
	svc, log := New(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	defer svc.Close()

	log.Debug("to file", String("k", "v"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"k":"v"`)

	svc.Apply(Config{Level: "error", File: FileConfig{Enabled: true, Path: path}})
	assert.False(t, log.Enabled(LevelWarn))
}

func TestWriterLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantTrace bool
		wantDebug bool
	}{
		{"trace", true, true},
		{"debug", false, true},
		{"info", false, false},
		{"bogus", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWriter(&buf, tt.level)

			log.Trace("t", Err(errors.New("deep")))
			assert.Equal(t, tt.wantTrace, bytes.Contains(buf.Bytes(), []byte(`"err":"deep"`)))
			buf.Reset()

			log.Debug("d")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)
		})
	}
}

func TestConsoleLevel(t *testing.T) {
	log := NewConsole("warn")
	assert.False(t, log.IsZero())
	assert.False(t, log.Enabled(LevelInfo))
	assert.True(t, log.Enabled(LevelError))
}
