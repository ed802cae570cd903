package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	r := NewRegistry()
	r.ObserveUpstream("/members", "GET", 200, 10*time.Millisecond)
	r.ObserveUpstream("/members", "GET", 200, 20*time.Millisecond)
	r.ObserveUpstream("/members/:id", "DELETE", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.upstreamRequests.WithLabelValues("/members", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamRequests.WithLabelValues("/members/:id", "DELETE", "error")))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveUpstream("/teams", "GET", 502, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `roster_upstream_requests_total{method="GET",route="/teams",status="502"} 1`)
}
