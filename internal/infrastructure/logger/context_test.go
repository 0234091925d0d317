package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldValue(entry observer.LoggedEntry, key string) (string, bool) {
	for _, f := range entry.Context {
		if f.Key == key {
			return f.String, true
		}
	}
	return "", false
}

func TestFromContext(t *testing.T) {
	log := zap.NewExample()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))

	assert.NotNil(t, FromContext(context.Background()))
	wrong := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))

	FromContext(ctx).Info("resolved")
	log.Info("again")
	require.Len(t, recorded.All(), 2)
	for _, e := range recorded.All() {
		v, ok := fieldValue(e, "request_id")
		assert.True(t, ok)
		assert.Equal(t, "req-42", v)
	}

	assert.Empty(t, GetRequestID(context.Background()))
}

func TestTraceIDs(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	tp := trace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	tp := trace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx = context.WithValue(ctx, RequestIDKey, "req-7")

	WithTraceContext(ctx, base).Info("with trace")
	entry := recorded.All()[0]

	traceID, ok := fieldValue(entry, "trace_id")
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	spanID, ok := fieldValue(entry, "span_id")
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().SpanID().String(), spanID)
	reqID, _ := fieldValue(entry, "request_id")
	assert.Equal(t, "req-7", reqID)
}
