package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("nonsense")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	FromContext(ctx).Info("hello", Email("email", "ada@example.com"))

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "a***@example.com", logs.All()[0].ContextMap()["email"])

	require.NotNil(t, FromContext(context.Background()))
}

func TestRedactEmail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", RedactEmail(""))
	require.Equal(t, "***", RedactEmail("not-an-email"))
	require.Equal(t, "u***@x.com", RedactEmail("u@x.com"))
}
