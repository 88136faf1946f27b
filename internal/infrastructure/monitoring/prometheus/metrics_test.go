package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_RegistersMetrics(t *testing.T) {
	c := NewCollector()

	c.ViolationsDetected.WithLabelValues("regex", "Critical").Inc()
	c.CacheRequests.WithLabelValues("l1", "hit").Add(3)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.ViolationsDetected.WithLabelValues("regex", "Critical")))
	assert.Equal(t, float64(3),
		testutil.ToFloat64(c.CacheRequests.WithLabelValues("l1", "hit")))
}

func TestCollector_Isolation(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.SearchRequests.WithLabelValues("computed").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.SearchRequests.WithLabelValues("computed")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.SearchRequests.WithLabelValues("computed")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.LLMRequests.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "leaselens_llm_requests_total")
}
