package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordBooking(OutcomeBooked)
	m.RecordBooking(OutcomeBooked)
	m.RecordBooking(OutcomeSlotTaken)
	m.RecordAuditFailure()
	m.RecordSweepWarnings(3)
	m.RecordSweepWarnings(0)
	m.RecordJobAbandoned(JobUnfilledWarning)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues(OutcomeBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues(OutcomeSlotTaken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweepWarnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsAbandoned.WithLabelValues(JobUnfilledWarning)))
}

func TestMetricsHandlerExposesDomainSeries(t *testing.T) {
	m := NewMetricsService()
	m.RecordBooking(OutcomeCancelled)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/slots", http.StatusOK, 15*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bookings_total{outcome="cancelled"}`)
	assert.Contains(t, body, "http_requests_total")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordBooking(OutcomeBooked)
		m.RecordNotificationFailure(StepInviteRequest)
		m.RecordAuditFailure()
		m.RecordSweepWarnings(1)
		m.RecordJobAbandoned("x")
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(false, time.Millisecond)
	})
}
