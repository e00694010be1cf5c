package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithFields(base, zap.String("claimant_id", "abc")).Info("matched")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["claimant_id"])

	assert.NotNil(t, WithFields(nil))
	assert.Same(t, base, WithFields(base))
}

func TestNamed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "engine").Info("run")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "engine", logs.All()[0].LoggerName)
	assert.NotNil(t, Named(nil, "x"))
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "python", limit: 10, want: "python"},
		{name: "cut", in: "python developer", limit: 6, want: "python..."},
		{name: "trimmed", in: "  go  ", limit: 10, want: "go"},
		{name: "zero limit", in: "go", limit: 0, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncateForLog(tt.in, tt.limit))
		})
	}
}
