package otel_test

import (
	"context"
	"errors"
	"testing"

	"aspen/infras/otel"
	"aspen/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded(t *testing.T) (otel.Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return otel.NewWithProvider(tp), recorder
}

func TestScope_Attributes(t *testing.T) {
	o, recorder := newRecorded(t)

	_, scope := o.NewScope(context.Background(), "service", "service.booking.Create")
	scope.SetAttributes(map[string]any{
		"booking.id":    "AGH0103240001",
		"booking.rooms": 2,
		"booking.paid":  false,
		"booking.total": decimal.RequireFromString("468.00"),
		"room.ids":      []string{"r1", "r2"},
	})
	scope.AddEvent("hold.created")
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "service.booking.Create", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, "AGH0103240001", attrs["booking.id"].AsString())
	assert.Equal(t, int64(2), attrs["booking.rooms"].AsInt64())
	assert.False(t, attrs["booking.paid"].AsBool())
	assert.Equal(t, "468", attrs["booking.total"].AsString())
	assert.Equal(t, []string{"r1", "r2"}, attrs["room.ids"].AsStringSlice())
	require.Len(t, spans[0].Events(), 1)
}

func TestScope_TraceIfError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
	}{
		{name: "nil leaves span unset", wantStatus: codes.Unset},
		{name: "plain error marks span", err: errors.New("connection reset"), wantStatus: codes.Error},
		{name: "storage failure marks span", err: failure.StorageUnavailable(errors.New("timeout")), wantStatus: codes.Error},
		{name: "client failure is only an event", err: failure.BookingNotFound("AGH0103240001"), wantStatus: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, recorder := newRecorded(t)

			func() (err error) {
				_, scope := o.NewScope(context.Background(), "repository", "repository.Get")
				defer scope.End()
				defer scope.TraceIfError(&err)

				return tt.err
			}()

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)

			if tt.err != nil {
				require.Len(t, spans[0].Events(), 1)
				assert.Equal(t, "exception", spans[0].Events()[0].Name)
			}
		})
	}
}
