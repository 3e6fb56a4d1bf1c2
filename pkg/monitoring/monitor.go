package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	EventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usage_events_recorded_total",
			Help: "Usage events appended to the event store",
		},
		[]string{"kind", "source"},
	)

	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "daily_aggregation_duration_seconds",
			Help:    "Time spent re-aggregating one user-day",
			Buckets: prometheus.DefBuckets,
		},
	)

	BadgesEarned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_earned_total",
			Help: "Badges newly earned by users",
		},
		[]string{"badge"},
	)

	ThresholdsCrossed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshold_crossings_total",
			Help: "Per-app daily limit crossings signalled",
		},
		[]string{"kind"},
	)

	RecomputeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recompute_user_passes_total",
			Help: "Per-user recompute passes run by the background job",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			EventsRecorded,
			AggregationDuration,
			BadgesEarned,
			ThresholdsCrossed,
			RecomputeRuns,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
