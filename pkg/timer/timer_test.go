package timer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func debugContext(buf *bytes.Buffer) context.Context {
	return zerolog.New(buf).Level(zerolog.DebugLevel).WithContext(context.Background())
}

func TestTrackLogsStep(t *testing.T) {
	var buf bytes.Buffer

	Track(debugContext(&buf), "upload")()

	assert.Contains(t, buf.String(), `"step":"upload"`)
	assert.Contains(t, buf.String(), `"took"`)
}

func TestStopwatchLapsAddUp(t *testing.T) {
	var buf bytes.Buffer

	sw := NewStopwatch(debugContext(&buf), "fetch")
	time.Sleep(2 * time.Millisecond)
	first := sw.Lap("list")
	second := sw.Lap("save")
	total := sw.Total()

	assert.GreaterOrEqual(t, total, first+second)
	assert.Contains(t, buf.String(), `"step":"list"`)
	assert.Contains(t, buf.String(), `"stopwatch":"fetch"`)
}

func TestSilentWithoutContextLogger(t *testing.T) {
	var buf bytes.Buffer
	prevGlobal, prevDefault := log.Logger, zerolog.DefaultContextLogger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.DefaultContextLogger = nil
	t.Cleanup(func() {
		log.Logger = prevGlobal
		zerolog.DefaultContextLogger = prevDefault
	})

	ctx := zerolog.Nop().WithContext(context.Background())
	Track(ctx, "quiet")()
	sw := NewStopwatch(context.Background(), "quiet")
	sw.Lap("step")
	sw.Total()

	assert.Zero(t, buf.Len())
}
