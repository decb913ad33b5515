package diag

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	s.Warn("duplicate name", slog.String("name", "F1"))
	s.Fail("no candidate", slog.String("element", "box/f3"))

	dec := json.NewDecoder(&buf)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, "WARN", first["level"])
	assert.Equal(t, "F1", first["name"])
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "box/f3", second["element"])
}

func TestRecorderAndTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	s := Tee(a, b, Nop)
	s.Warn("w", slog.Int("n", 1))
	s.Fail("f")
	s.Fail("g")

	for _, r := range []*Recorder{a, b} {
		assert.Equal(t, 1, r.Count(LevelWarn))
		assert.Equal(t, 2, r.Count(LevelFail))
	}
	e := a.Entries()[0]
	assert.Equal(t, int64(1), e.Attr("n").Int64())
	assert.Equal(t, "warn", e.Level.String())
	assert.Equal(t, slog.KindAny, e.Attr("missing").Kind())
}
