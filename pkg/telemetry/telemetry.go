// Package telemetry provides low-overhead request instrumentation: a
// Prometheus duration histogram per route and method, plus logging of
// requests slower than a fixed threshold.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"foliodb/pkg/logger"
)

const slowThreshold = 200 * time.Millisecond

var (
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foliodb_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "foliodb_http_requests_in_flight",
		Help: "Requests currently being served.",
	})
)

func init() {
	prometheus.MustRegister(httpDuration, httpInFlight)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware wraps a handler with metrics collection and slow-request
// logging. Routes registered through gorilla/mux report their template
// instead of the raw path, keeping label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpInFlight.Dec()
		elapsed := time.Since(start)
		route := routeLabel(r)
		httpDuration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
		if elapsed > slowThreshold {
			logger.Warn("slow_request", "route", route, "method", r.Method, "status", rec.status, "elapsed", elapsed.String())
		}
	})
}

func routeLabel(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
