package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestAdapterWritesFields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(New(Config{Level: DebugLevel, Output: &buf}))

	adapter.Debug("student added", "operation", "add", "id", "ABC1234", "changes", 1)
	adapter.Error("student operation failed", "error", errors.New("boom"), "elapsed", 2*time.Millisecond, "odd")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "student added", lines[0]["message"])
	assert.Equal(t, "ABC1234", lines[0]["id"])
	assert.Equal(t, float64(1), lines[0]["changes"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "odd", lines[1]["!BADKEY"])
}

func TestAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(New(Config{Level: WarnLevel, Output: &buf}))

	adapter.Debug("hidden")
	adapter.Info("hidden")
	adapter.Warn("shown", "k", struct{ A int }{A: 1})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	NewAdapter(New(Config{Pretty: true, Output: &buf})).Info("hello", "id", "X")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "X")
}
