package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_operations_total",
		Help: "Post store operations by operation and outcome.",
	}, []string{"op", "outcome"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_uploads_total",
		Help: "Image uploads by outcome.",
	}, []string{"outcome"})

	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "postboard_upload_bytes",
		Help:    "Size of accepted uploads.",
		Buckets: prometheus.ExponentialBuckets(16<<10, 2, 8),
	})
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
