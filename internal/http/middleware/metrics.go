// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors for the API. Metrics() records
// per-request traffic keyed by method, route template and status; route
// templates (c.FullPath) keep the path label bounded, and requests that match
// no route share the single path value "unmatched".
//
// Rendered failures are counted separately by kind through ObserveError:
// validation, not_found, forbidden, app and internal from the dispatcher,
// plus rate_limited from the limiter.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedPath labels requests that hit NoRoute.
const unmatchedPath = "unmatched"

// Response size buckets, 200B to 5MiB.
var sizeBuckets = []float64{
	200, 500, 1 << 10, 2 << 10, 5 << 10,
	10 << 10, 25 << 10, 50 << 10,
	100 << 10, 250 << 10, 500 << 10,
	1 << 20, 2 << 20, 5 << 20,
}

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// Latency leaves out status to keep histogram series down.
	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Current number of in-flight HTTP requests.",
	})

	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	apiErrs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of error responses by failure kind.",
	}, []string{"kind"})
)

// ObserveError records one rendered failure of the given kind.
func ObserveError(kind string) {
	apiErrs.WithLabelValues(kind).Inc()
}

// routeLabel is the registered route template, or "unmatched".
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedPath
}

// Metrics instruments every request and is meant to be served next to
//
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Status-only responses (size -1) are left out of the size histogram.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		method, path := c.Request.Method, routeLabel(c)
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
