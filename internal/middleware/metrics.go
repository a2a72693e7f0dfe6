package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
		},
		[]string{"method", "route"},
	)

	inFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskdesk_http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	uploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskdesk_uploaded_bytes_total",
			Help: "Total size of stored attachments",
		},
	)
)

// Metrics records request counts and latencies. Routes are labelled with the
// registered pattern (/api/tasks/:id), not the raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		inFlightRequests.Inc()
		defer inFlightRequests.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpload adds a stored attachment size to the upload counter.
func ObserveUpload(size int64) {
	uploadedBytes.Add(float64(size))
}

// MetricsHandler returns the HTTP handler for /metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
