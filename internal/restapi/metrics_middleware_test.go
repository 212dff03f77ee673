package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash.nycbikeshare.org/internal/metrics"
)

func TestMetricsHandler_NilMetrics(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	wrapped := MetricsHandler(nil)(inner)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/anything", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetricsHandler_CountsByRoutePattern(t *testing.T) {
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats/summary.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	server := httptest.NewServer(MetricsHandler(m)(mux))
	defer server.Close()

	for i := 0; i < 3; i++ {
		resp, err := http.Get(server.URL + "/api/stats/summary.json?startDate=2022-01-01")
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Counted under the mux pattern, not the raw URL with query params.
	counted := testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/stats/summary.json", "200"))
	assert.Equal(t, 3.0, counted)
}

func TestMetricsHandler_UnmatchedRoute(t *testing.T) {
	m := metrics.New()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	MetricsHandler(m)(inner).ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

	counted := testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, 1.0, counted)
}

func TestMetricsHandler_VariousStatusCodes(t *testing.T) {
	for _, code := range []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusInternalServerError,
	} {
		m := metrics.New()

		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})

		rec := httptest.NewRecorder()
		MetricsHandler(m)(inner).ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

		assert.Equal(t, code, rec.Code)
	}
}

func TestMetricsResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &metricsResponseWriter{
		ResponseWriter: rec,
		statusCode:     http.StatusOK,
	}

	w.WriteHeader(http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.statusCode)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
