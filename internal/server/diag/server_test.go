package diag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/ringlog/internal/blockdev"
	"github.com/rzbill/ringlog/internal/metrics"
	"github.com/rzbill/ringlog/internal/ring"
)

func newTestServer(t *testing.T) (*Server, *ring.Log) {
	t.Helper()
	dev := blockdev.NewMemDevice(256, 4)
	reg := prometheus.NewRegistry()
	l, err := ring.New(dev, ring.Options{Tag: 1, RecordSize: 16, Metrics: metrics.NewCollector(reg)})
	require.NoError(t, err)
	require.NoError(t, l.Format())
	return New(l, &sync.Mutex{}, reg, nil), l
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/v1/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDumpReturnsSectorTable(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, l.Append(make([]byte, 16)))

	rec := get(t, s, "/v1/dump")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SECTOR")
	assert.Contains(t, rec.Body.String(), "active")
}

func TestStats(t *testing.T) {
	s, l := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Append(make([]byte, 16)))
	}

	rec := get(t, s, "/v1/stats?exact=true")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 21, resp.Capacity)
	assert.Equal(t, 3, resp.EstimateCount)
	require.NotNil(t, resp.ExactCount)
	assert.Equal(t, 3, *resp.ExactCount)
}

func TestMetricsEndpoint(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, l.Append(make([]byte, 16)))

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ringlog_append_duration_seconds")
}
