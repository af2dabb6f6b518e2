package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/items/a", "/items/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)
	mf := findMetricFamily(mfs, "scanpos_http_requests_total")
	require.NotNil(t, mf)

	counts := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lbl := range metric.GetLabel() {
			labels[lbl.GetName()] = lbl.GetValue()
		}
		counts[labels["route"]+" "+labels["status"]] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["/items/{itemId} 404"])
	assert.Equal(t, 1.0, counts["/ok 200"])
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCheckoutMetrics(reg).Observe(OutcomeCommitted, 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `checkout_total{outcome="committed"} 1`)
}
