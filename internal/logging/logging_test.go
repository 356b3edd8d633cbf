// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		json  bool
		want  zapcore.Level
	}{
		{"info", false, zapcore.InfoLevel},
		{"debug", true, zapcore.DebugLevel},
		{"WARN", false, zapcore.WarnLevel},
		{"", true, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, tt.json)
		require.NoError(t, err, tt.level)
		assert.True(t, logger.Core().Enabled(tt.want), tt.level)
		assert.False(t, logger.Core().Enabled(tt.want-1), tt.level)
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}
