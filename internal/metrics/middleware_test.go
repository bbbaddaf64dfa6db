package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{itemID}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/items/{itemID}", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest("GET", "/items/ak-47", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter),
		"counter keyed by route template, not the raw path")

	rawPath := HTTPRequestsTotal.WithLabelValues("GET", "/items/ak-47", "200")
	assert.Zero(t, testutil.ToFloat64(rawPath))
}
