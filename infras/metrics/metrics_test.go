package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aspen/infras/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAndHandler(t *testing.T) {
	reg := metrics.InitRegistry()
	assert.Same(t, reg, metrics.InitRegistry())

	metrics.ObserveHTTP("/v1/bookings", http.MethodPost, http.StatusCreated, 12*time.Millisecond)
	metrics.ObserveExternal("stripe", "payment_intents", http.StatusOK, 40*time.Millisecond)
	metrics.ObserveBooking(metrics.OutcomeCreated)
	metrics.ObserveSweep(2)

	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "aspen_http_requests_total")
	assert.Contains(t, out, "aspen_external_requests_total")
	assert.Contains(t, out, `aspen_booking_events_total{outcome="created"}`)
	assert.Contains(t, out, "aspen_expired_bookings_deleted_total")
}
