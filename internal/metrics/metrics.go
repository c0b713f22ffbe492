package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecommerce"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route", "method"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Catalog cache lookups by key prefix and outcome.",
	}, []string{"prefix", "result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"result"})
)

func init() {
	for _, c := range []prometheus.Collector{
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	} {
		if err := prometheus.Register(c); err != nil {
			slog.Debug("Collector already registered", slog.Any("error", err))
		}
	}
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	c.code = code
	c.ResponseWriter.WriteHeader(code)
}

// Middleware records request metrics labelled by the matched route pattern.
// It must wrap the ServeMux directly, since the mux sets r.Pattern on the
// request it is handed.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		rec := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		timer := time.Now()

		next.ServeHTTP(rec, r)

		route := routeLabel(r)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(timer).Seconds())
	})
}

// routeLabel strips the method from the pattern ("GET /carts/{id}" becomes
// "/carts/{id}"). Unmatched paths share one label so scanners cannot blow up
// the series count.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}

	_, path, found := strings.Cut(r.Pattern, " ")
	if !found {
		return r.Pattern
	}

	return path
}

// ObserveCacheLookup counts a lookup under the key's prefix ("product:42"
// counts as "product").
func ObserveCacheLookup(key, result string) {
	prefix, _, _ := strings.Cut(key, ":")
	cacheLookups.WithLabelValues(prefix, result).Inc()
}

// ObserveLogin classifies a login outcome from the error it returned.
func ObserveLogin(err error) {
	result := "success"

	if err != nil {
		switch appErrors.StatusOf(err) {
		case http.StatusUnauthorized:
			result = "invalid_credentials"
		case http.StatusForbidden:
			result = "inactive"
		case http.StatusTooManyRequests:
			result = "rate_limited"
		default:
			result = "error"
		}
	}

	loginAttempts.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
