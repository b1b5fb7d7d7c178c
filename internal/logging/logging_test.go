package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zapcore.WarnLevel)

	logger.Debug("hidden")
	logger.Warn("shown", zap.String("database", "sales"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, `"database": "sales"`)
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRun(New(&buf, zapcore.DebugLevel), "run-1", "123456789012")
	logger.Info("granting")

	out := buf.String()
	assert.Contains(t, out, `"run_id": "run-1"`)
	assert.Contains(t, out, `"account": "123456789012"`)

	assert.NotNil(t, WithRun(nil, "run-1", "1"))
}
