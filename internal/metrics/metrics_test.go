package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"medstock/m/domain"
)

func TestMovementCounter(t *testing.T) {
	m := New()

	m.Movement(domain.MovementAdd)
	m.Movement(domain.MovementAdd)
	m.Movement(domain.MovementDispense)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("ADD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("DISPENSE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.movements.WithLabelValues("DELETE")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/api/medicines/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/medicines/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/medicines/8", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("DELETE", "/api/medicines/{id}", "404")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Movement(domain.MovementDelete)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medstock_stock_movements_total{type="DELETE"} 1`)
}
