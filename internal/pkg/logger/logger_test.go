package logger_test

import (
	"errors"
	"testing"

	"dispatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core)).With(logger.Component("hub"))

	log.Info("published", logger.String("event", "order.created"), logger.Int("recipients", 3))
	log.Warn("dropped", logger.Error(errors.New("buffer full")))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "published", entries[0].Message)
	assert.Equal(t, "hub", entries[0].ContextMap()["component"])
	assert.Equal(t, "order.created", entries[0].ContextMap()["event"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["recipients"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "buffer full", entries[1].ContextMap()["error"])
}

func TestNew(t *testing.T) {
	t.Run("builds with a known level", func(t *testing.T) {
		log, err := logger.New("dispatch", "debug", false)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		log, err := logger.New("dispatch", "loud", true)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})
}

func TestNewNop(t *testing.T) {
	log := logger.NewNop()

	assert.NotPanics(t, func() {
		log.With(logger.Component("test")).Error("ignored")
	})
}
