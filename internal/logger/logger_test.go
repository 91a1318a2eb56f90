package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	log, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New("development", "loud")
	assert.Error(t, err)
}

func TestForAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithRequestID(context.Background(), "req-42")

	For(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "unknown", RequestID(context.Background()))
}
