package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape returns the exposition text of m
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordRun("useState", "rendered", "", time.Millisecond)

	assert.Contains(t, scrape(t, a), `hookify_pipeline_runs_total{outcome="rendered",topic="useState"} 1`)
	assert.NotContains(t, scrape(t, b), `hookify_pipeline_runs_total{`)
}

func TestRecordRun(t *testing.T) {
	m := NewMetrics()

	m.RecordRun("useRef", "rendered", "", time.Millisecond)
	m.RecordRun("useRef", "failed", "compile", time.Millisecond)
	m.RecordRun("useRef", "failed", "compile", time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `hookify_pipeline_failures_total{stage="compile"} 2`)
	assert.Contains(t, out, `hookify_pipeline_run_duration_seconds_count 3`)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRuns)
	assert.Equal(t, int64(2), snap.FailedRuns)
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	d := NewTimer(m, "transform").Stop()
	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Contains(t, scrape(t, m), `hookify_pipeline_stage_duration_seconds_count{stage="transform"} 1`)

	assert.NotPanics(t, func() { NewTimer(nil, "x").Stop() })
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/topics/:topic", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/topics/useState", "/topics/useRef", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `hookify_http_requests_total{method="GET",path="/topics/:topic",status="200"} 2`)
	assert.Contains(t, out, `hookify_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, out, "hookify_uptime_seconds")
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)
}

func TestWSConnections(t *testing.T) {
	m := NewMetrics()

	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()
	m.RecordWSMessage("in", "update")

	out := scrape(t, m)
	assert.Contains(t, out, "hookify_ws_connections 1")
	assert.Contains(t, out, `hookify_ws_messages_total{direction="in",type="update"} 1`)
	assert.Equal(t, int64(1), m.Snapshot().ActiveConnections)
}
