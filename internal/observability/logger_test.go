package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PabloGalante/myvfriend/internal/observability"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(zap.NewNop()) })

	ctx := observability.WithRequestID(context.Background(), "req-1")
	observability.LoggerFromContext(ctx).Infow("hello", "user_id", "U1")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "U1", fields["user_id"])
}

func TestLoggerFromContextWithoutRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(zap.NewNop()) })

	observability.LoggerFromContext(context.Background()).Info("plain")

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestInitModes(t *testing.T) {
	t.Cleanup(func() { observability.SetLogger(zap.NewNop()) })

	require.NoError(t, observability.Init("production"))
	require.NoError(t, observability.Init("development"))
	assert.NotNil(t, observability.Logger())
}
