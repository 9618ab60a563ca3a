package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	for _, cfg := range []Config{DevelopmentConfig(), {Level: "info"}, {Level: "warn", OutputPaths: []string{"stderr"}}} {
		l, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l.Logger)
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := NewNop()
	assert.Same(t, l.Logger, OrNop(l.Logger))
}

func TestDevelopmentConfigKeepsStdoutFree(t *testing.T) {
	cfg := DevelopmentConfig()
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
	assert.True(t, NewDevelopment().Core().Enabled(zapcore.DebugLevel))
}
