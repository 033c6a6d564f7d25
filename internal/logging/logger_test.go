package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestZapLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.Level(-TRACE)},
		{"info", zapcore.Level(-DEFAULT)},
		{"", zapcore.Level(-DEFAULT)},
		{"warn", zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := zapLevel(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := zapLevel("chatty")
	assert.Error(t, err)
}

func TestNewVerbosityGates(t *testing.T) {
	logger, err := New(Options{Level: "info", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.V(DEFAULT).Enabled())
	assert.False(t, logger.V(VERBOSE).Enabled())

	logger, err = New(Options{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.V(TRACE).Enabled())

	logger, err = New(Options{Level: "error"})
	require.NoError(t, err)
	assert.False(t, logger.V(0).Enabled())
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
