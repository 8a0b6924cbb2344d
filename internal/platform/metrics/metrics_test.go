package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/patients/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/patients/{id}", "GET", "418")))
}
