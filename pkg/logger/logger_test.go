package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "stockreceipt/internal/core/context"
)

func TestFromContext_AddsTraceAndOperator(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithOperator(ctx, &appctx.Operator{OperatorID: "op-7"})

	Info(ctx, "batch executed", "total", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "op-7", fields["operator_id"])
	assert.EqualValues(t, 3, fields["total"])
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := (&Logger{zap.New(core).Sugar()}).WithComponent("executor")

	l.Warnw("line failed", "row_id", "x")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "executor", logs.All()[0].ContextMap()["component"])
}

func TestNew_FallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}
