package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/krishivoice/internal/metrics"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	s := New(0, "test")
	h := s.Handler()

	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
	assert.Contains(t, get(h, "/healthz").Body.String(), `"version":"test"`)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)

	s.SetReady(true)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)

	s.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
}

func TestMetrics(t *testing.T) {
	metrics.Detections.WithLabelValues("ta-IN", "api").Inc()

	rec := get(New(0, "test").Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "krishivoice_language_detections_total")
}
