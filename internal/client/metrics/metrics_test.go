package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_CountsByOutcome(t *testing.T) {
	c := NewCollector()

	c.Observe("post", "/api/auth/signin", OutcomeSuccess, 20*time.Millisecond)
	c.Observe("POST", "api/auth/signin", OutcomeServerError, 5*time.Millisecond)
	c.Observe("GET", "api/weather?location=Kampala", OutcomeTimeout, 30*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(c.requests.WithLabelValues("POST", "api/auth/signin", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requests.WithLabelValues("POST", "api/auth/signin", OutcomeServerError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requests.WithLabelValues("GET", "api/weather", OutcomeTimeout)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestStart_TracksInFlight(t *testing.T) {
	c := NewCollector()

	done := c.Start()
	assert.InDelta(t, 1, testutil.ToFloat64(c.inFlight), 0)
	done()
	assert.InDelta(t, 0, testutil.ToFloat64(c.inFlight), 0)
}

func TestWriteText(t *testing.T) {
	c := NewCollector()
	c.Observe("GET", "api/market-trends", OutcomeSuccess, time.Second)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	assert.Contains(t, buf.String(), `agrisonic_gateway_requests_total{method="GET",outcome="success",path="api/market-trends"} 1`)
	assert.Contains(t, buf.String(), "agrisonic_gateway_request_duration_seconds_bucket")
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "/", canonicalPath(""))
	assert.Equal(t, "/", canonicalPath("/"))
	assert.Equal(t, "api/auth/me", canonicalPath("/api/auth/me/"))
	assert.Equal(t, "api/weather", canonicalPath("api/weather?type=current"))
}
