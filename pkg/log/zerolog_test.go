package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf))

	logger.Info("wait complete",
		String("flow", "video"),
		Uint64("index", 250),
		Uint16("slices", 4),
		Duration("delay", 3*time.Millisecond),
		Bool("promoted", true),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"message":"wait complete"`)
	assert.Contains(t, out, `"flow":"video"`)
	assert.Contains(t, out, `"index":250`)
	assert.Contains(t, out, `"slices":4`)
	assert.Contains(t, out, `"promoted":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf)).With(String("component", "syncgroup"))

	logger.Warn("late")

	assert.Contains(t, buf.String(), `"component":"syncgroup"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(&buf, "warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l.Info("ignored", String("k", "v"))
	assert.Same(t, l, l.With(String("k", "v")))
}
