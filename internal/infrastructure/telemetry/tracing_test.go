package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)
	productID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "price_update", "apply",
		WithAttribute(SpanAttrProductID, productID),
		WithSpanKind(trace.SpanKindServer),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	SetAttributes(span, SpanAttrItemCount, 3, SpanAttrStrategy, "OVERWRITE", 42, "ignored")
	AddEvent(span, "conflicts_detected", SpanAttrConflictCount, int64(2))
	SetOK(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "price_update.apply", s.Name())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind())
	assert.Equal(t, codes.Ok, s.Status().Code)

	attrs := attrMap(s.Attributes())
	assert.Equal(t, productID.String(), attrs[SpanAttrProductID].AsString())
	assert.Equal(t, int64(3), attrs[SpanAttrItemCount].AsInt64())
	assert.Equal(t, "OVERWRITE", attrs[SpanAttrStrategy].AsString())

	require.Len(t, s.Events(), 1)
	assert.Equal(t, "conflicts_detected", s.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "effective_price.resolve")
	RecordError(span, nil)
	RecordError(span, errors.New("no price configured"))
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "no price configured", s.Status().Description)
	require.Len(t, s.Events(), 1)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		AddEvent(nil, "e")
		SetOK(nil)
		RecordError(nil, errors.New("x"))
	})
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.STRING, toAttribute("k", "v").Value.Type())
	assert.Equal(t, attribute.INT64, toAttribute("k", 1).Value.Type())
	assert.Equal(t, attribute.FLOAT64, toAttribute("k", 1.5).Value.Type())
	assert.Equal(t, attribute.BOOL, toAttribute("k", true).Value.Type())
	assert.Equal(t, attribute.STRINGSLICE, toAttribute("k", []string{"a"}).Value.Type())
	assert.Equal(t, "{1 2}", toAttribute("k", struct{ A, B int }{1, 2}).Value.AsString())
}
