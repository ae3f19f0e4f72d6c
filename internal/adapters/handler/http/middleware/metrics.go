package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitflow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habitflow_http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habitflow_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// InsightsGenerated counts insights served, by source (heuristic, ai) and type.
	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitflow_insights_generated_total",
			Help: "Total number of insights returned to clients",
		},
		[]string{"source", "type"},
	)

	HabitLogToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitflow_habit_log_toggles_total",
			Help: "Completion toggles by resulting state",
		},
		[]string{"state"}, // completed, cleared
	)
)

// MetricsMiddleware records request count, latency and in-flight requests. The path
// label uses the route template so IDs do not explode cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ActiveRequests.Inc()
		defer ActiveRequests.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func TrackInsight(source, insightType string) {
	InsightsGenerated.WithLabelValues(source, insightType).Inc()
}

func TrackToggle(completed bool) {
	state := "cleared"
	if completed {
		state = "completed"
	}
	HabitLogToggles.WithLabelValues(state).Inc()
}
