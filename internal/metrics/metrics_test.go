package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := Middleware(mux)
	counter := requestsTotal.WithLabelValues("/carts/{id}", http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/carts/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(counter)-before)
	assert.Equal(t, float64(0), testutil.ToFloat64(requestsInFlight))
}

func TestRouteLabel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, "unmatched", routeLabel(req))

	req.Pattern = "DELETE /carts/{id}/remove_from_cart"
	assert.Equal(t, "/carts/{id}/remove_from_cart", routeLabel(req))

	req.Pattern = "/health"
	assert.Equal(t, "/health", routeLabel(req))
}

func TestObserveCacheLookup(t *testing.T) {
	counter := cacheLookups.WithLabelValues("product", CacheMiss)
	before := testutil.ToFloat64(counter)

	ObserveCacheLookup("product:0b7d3a56", CacheMiss)

	assert.Equal(t, float64(1), testutil.ToFloat64(counter)-before)
}

func TestObserveLogin(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"Success", nil, "success"},
		{"Bad Password", appErrors.UnauthorizedError("Invalid username or password"), "invalid_credentials"},
		{"Disabled", appErrors.ForbiddenError("Inactive users cannot log in."), "inactive"},
		{"Limited", appErrors.TooManyRequestsError("slow down"), "rate_limited"},
		{"Unexpected", errors.New("boom"), "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counter := loginAttempts.WithLabelValues(tc.result)
			before := testutil.ToFloat64(counter)

			ObserveLogin(tc.err)

			assert.Equal(t, float64(1), testutil.ToFloat64(counter)-before)
		})
	}
}
