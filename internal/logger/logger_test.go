package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(Config{Encoding: "json", Level: "warn"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Development(t *testing.T) {
	log, err := New(Config{IsDevelopment: true, Encoding: "console", Level: "debug"})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_DisableCaller(t *testing.T) {
	callers := map[bool]bool{}
	for _, disable := range []bool{false, true} {
		log, err := New(Config{Encoding: "console", Level: "warn", DisableCaller: disable})
		require.NoError(t, err)

		log.WithOptions(zap.Hooks(func(e zapcore.Entry) error {
			callers[disable] = e.Caller.Defined
			return nil
		})).Warn("caller check")
	}

	assert.True(t, callers[false])
	assert.False(t, callers[true])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestForEnvironment(t *testing.T) {
	cfg := ForEnvironment("development", "", "console")
	assert.True(t, cfg.IsDevelopment)
	assert.Equal(t, "info", cfg.Level)

	cfg = ForEnvironment("production", "error", "json")
	assert.False(t, cfg.IsDevelopment)
	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
}
