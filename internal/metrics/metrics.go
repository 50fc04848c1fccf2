package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firewatch_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	hotspotsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_hotspots_ingested_total",
			Help: "Hotspots received per source, split by whether they were new.",
		},
		[]string{"source", "outcome"},
	)

	clustersDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firewatch_clusters_detected_total",
			Help: "Fire clusters produced by detection runs.",
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firewatch_detection_runs_total",
			Help: "Detection runs by final status.",
		},
		[]string{"status"},
	)

	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firewatch_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(hotspotsIngested)
	prometheus.MustRegister(clustersDetected)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(stageDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and duration. Paths are labelled by the
// matched route template so that ids do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "other"
		}
		code := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordIngest counts hotspots received from a source and how many were new
func RecordIngest(source string, received, inserted int) {
	if inserted > received {
		inserted = received
	}
	hotspotsIngested.WithLabelValues(source, "new").Add(float64(inserted))
	hotspotsIngested.WithLabelValues(source, "duplicate").Add(float64(received - inserted))
}

// RecordClusters counts clusters found by a run
func RecordClusters(n int) {
	clustersDetected.Add(float64(n))
}

// RecordRun counts a run reaching a terminal status
func RecordRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}

// ObserveStage records how long a pipeline stage took
func ObserveStage(stage string, started time.Time) {
	stageDurationSeconds.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}
