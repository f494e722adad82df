package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewSetsLevel(t *testing.T) {
	log, err := New("warn", "development")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = New("bogus", "production")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, zap.L(), FromContext(context.Background()))

	l := zap.NewNop()
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
