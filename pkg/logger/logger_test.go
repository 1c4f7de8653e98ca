package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", FormatJSON)

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Str("component", "test").Msg("kept")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "test", line["component"])
	assert.Contains(t, line, "time")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "loud", FormatJSON)

	l.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())
	l.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", FormatConsole)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestInitOwnsContextFallback(t *testing.T) {
	prevGlobal, prevDefault := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prevGlobal
		zerolog.DefaultContextLogger = prevDefault
	})

	var buf bytes.Buffer
	Init(&buf, "debug", FormatJSON)
	zerolog.Ctx(context.Background()).Debug().Msg("via context")
	assert.Contains(t, buf.String(), "via context")

	buf.Reset()
	var own bytes.Buffer
	ctx := zerolog.New(&own).WithContext(context.Background())
	zerolog.Ctx(ctx).Debug().Msg("own logger")
	assert.Zero(t, buf.Len())
	assert.Contains(t, own.String(), "own logger")
}
