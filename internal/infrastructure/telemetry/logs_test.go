package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_CoreDisabled(t *testing.T) {
	lp := &LoggerProvider{}
	core := lp.Core(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	var nilProvider *LoggerProvider
	assert.False(t, nilProvider.IsEnabled())
}

func TestLevelFilterCore(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	l := zap.New(core).With(zap.String("owner_id", "u1"))

	l.Info("dropped")
	l.Warn("kept")

	assert.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "u1", entry.ContextMap()["owner_id"])
}

func TestFlush(t *testing.T) {
	var deadline time.Time
	err := flush(context.Background(), "meter", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return errors.New("collector gone")
	})

	assert.EqualError(t, err, "failed to shutdown meter provider: collector gone")
	assert.WithinDuration(t, time.Now().Add(shutdownTimeout), deadline, time.Second)
	assert.NoError(t, flush(context.Background(), "logger", func(context.Context) error { return nil }))
}
