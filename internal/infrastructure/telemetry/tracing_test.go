package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
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

func TestStartServiceSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "stock_take", "finalize",
		telemetry.SpanAttrSessionID, "abc",
		telemetry.SpanAttrProductCount, 3,
	)
	telemetry.SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stock_take.finalize", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(telemetry.SpanAttrSessionID, "abc"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int(telemetry.SpanAttrProductCount, 3))
}

func TestRecordError(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "stock_take", "commit")
	telemetry.RecordError(span, errors.New("store unavailable"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "store unavailable", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestAddEventAndSetAttributes(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "receiving", "receive")
	telemetry.SetAttributes(span, "qty", 8.0, 42, "ignored", "cleared", true)
	telemetry.AddEvent(span, "oversell_cleared", telemetry.SpanAttrProductID, "p-1")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.Float64("qty", 8.0))
	assert.Contains(t, attrs, attribute.Bool("cleared", true))
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "oversell_cleared", spans[0].Events()[0].Name)
}
