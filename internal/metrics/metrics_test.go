package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSelection(t *testing.T) {
	applied := testutil.ToFloat64(SelectionOutcomes.WithLabelValues("evening", "applied"))
	skipped := testutil.ToFloat64(SelectionOutcomes.WithLabelValues("evening", "skipped"))

	RecordSelection("evening", 3, 1)
	RecordSelection("evening", 0, 0)

	assert.Equal(t, applied+3, testutil.ToFloat64(SelectionOutcomes.WithLabelValues("evening", "applied")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(SelectionOutcomes.WithLabelValues("evening", "skipped")))
}

func TestRecordBookingSubmitted(t *testing.T) {
	before := testutil.ToFloat64(BookingsSubmitted)

	RecordBookingSubmitted(82820)

	assert.Equal(t, before+1, testutil.ToFloat64(BookingsSubmitted))
}

func TestRecordEventPublished(t *testing.T) {
	before := testutil.ToFloat64(EventsPublished.WithLabelValues("booking.submitted", "error"))

	RecordEventPublished("booking.submitted", errors.New("broker down"))

	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublished.WithLabelValues("booking.submitted", "error")))
}

func TestRecordBreakerState(t *testing.T) {
	RecordBreakerState("availability-postgres", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("availability-postgres")))

	RecordBreakerState("availability-postgres", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("availability-postgres")))
}

func TestHandler(t *testing.T) {
	RecordSessionOpened()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "booking_sessions_opened_total"))
}
