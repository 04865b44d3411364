package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ViewingTransition(domain.ViewingApproved)
	m.ViewingTransition(domain.ViewingApproved)
	m.EventPublished("viewing.approved", nil)
	m.EventPublished("viewing.approved", errors.New("channel closed"))
	m.RecordHTTPRequest(http.MethodGet, "/api/properties/{id}", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.viewingTransitions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("viewing.approved", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("viewing.approved", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/properties/{id}", "200")))
}

func TestMetrics_InstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.IncRequestsInFlight()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.requestsInFlight))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.requestsInFlight))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ViewingTransition(domain.ViewingPending)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `homiio_viewing_transitions_total{status="pending"} 1`)
}
