package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultIsNoOp(t *testing.T) {
	// Must be usable before Initialize without panicking
	require.NotNil(t, Logger)
	Logger.Infow("no-op message", FieldComponent, "test")
}

func TestInitializeConsole(t *testing.T) {
	err := Initialize(false, zapcore.InfoLevel)
	require.NoError(t, err)
	assert.False(t, JSONOutput)
	Logger.Infow("console message", FieldTurnID, "t-1")
}

func TestInitializeJSON(t *testing.T) {
	err := Initialize(true, zapcore.DebugLevel)
	require.NoError(t, err)
	assert.True(t, JSONOutput)
	Logger.Debugw("json message", FieldIntent, "stock_query")
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		level     zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, VerbosityToLevel(tt.verbosity))
	}
}
