package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactMasksCredentialKeys(t *testing.T) {
	got := redact([]interface{}{"user_id", "abc", "db_password", "hunter2", "jwt_token", "t", "odd"})
	assert.Equal(t, []interface{}{"user_id", "abc", "db_password", "[REDACTED]", "jwt_token", "[REDACTED]", "odd"}, got)
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "safety").Info("assessed", "product_id", "p1", "secret", "x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "safety", fields["component"])
	assert.Equal(t, "p1", fields["product_id"])
	assert.Equal(t, "[REDACTED]", fields["secret"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New("production", "nonsense")
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
}
