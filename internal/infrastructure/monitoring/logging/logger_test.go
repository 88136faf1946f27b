package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "f", Value: 0.5}, Float64("f", 0.5))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
	assert.Equal(t, "error", Err(assert.AnError).Key)
}

func TestZapLogger_EmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromCore(core)

	logger.Info("clause processed",
		String("lease_id", "ls-1"),
		Int("index", 3),
		Bool("flagged", true),
	)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "clause processed", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "ls-1", fields["lease_id"])
	assert.Equal(t, int64(3), fields["index"])
	assert.Equal(t, true, fields["flagged"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromCore(core).Named("search").With(String("component", "engine"))

	logger.Warn("variant query failed")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "search", entries[0].LoggerName)
	assert.Equal(t, "engine", entries[0].ContextMap()["component"])
}

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("smoke")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	nop := NewNopLogger()
	SetDefault(nop)
	assert.Equal(t, nop, Default())

	SetDefault(nil)
	assert.Equal(t, nop, Default(), "nil must not replace the default")
}
