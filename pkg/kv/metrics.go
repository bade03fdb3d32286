package kv

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foliodb_kv_ops_total",
		Help: "KV primitive operations by op and outcome.",
	}, []string{"op", "outcome"})

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foliodb_kv_op_duration_seconds",
		Help:    "KV primitive operation latency.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(opsTotal, opDuration)
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	opsTotal.WithLabelValues(op, outcome).Inc()
	opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
