package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collectors exported on /metrics.
type Metrics struct {
	decodeSeconds *prometheus.HistogramVec
	frames        *prometheus.CounterVec
	captureErrors prometheus.Counter
	recordErrors  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decodeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "svbcam",
			Name:      "decode_seconds",
			Help:      "Time spent demosaicing one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"algorithm"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "svbcam",
			Name:      "frames_served_total",
			Help:      "Frames served, by output format.",
		}, []string{"format"}),
		captureErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "svbcam",
			Name:      "capture_errors_total",
			Help:      "Frame grabs that failed after all retries.",
		}),
		recordErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "svbcam",
			Name:      "record_errors_total",
			Help:      "Served frames the recorder failed to archive.",
		}),
	}
	reg.MustRegister(m.decodeSeconds, m.frames, m.captureErrors, m.recordErrors)
	return m
}
