// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	LinesRead     prometheus.Counter
	FramesEmitted prometheus.Counter
	FramesDropped *prometheus.CounterVec
	FeedFrames    *prometheus.CounterVec

	// Histograms (bytes)
	LineBytes prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		LinesRead = promauto.NewCounter(prometheus.CounterOpts{Name: "chatfilter_lines_read_total", Help: "Number of input lines read"})
		FramesEmitted = promauto.NewCounter(prometheus.CounterOpts{Name: "chatfilter_frames_emitted_total", Help: "Number of frames rendered to output"})
		FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chatfilter_frames_dropped_total", Help: "Number of input lines dropped, by reason"}, []string{"reason"})
		FeedFrames = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chatfilter_feed_frames_total", Help: "Number of frames written by the upstream feed, by kind"}, []string{"kind"})
		LineBytes = promauto.NewHistogram(prometheus.HistogramOpts{Name: "chatfilter_line_bytes", Help: "Input line size in bytes", Buckets: prometheus.ExponentialBuckets(64, 4, 8)})
	})
}

// RecordLine counts one input line of n bytes.
func RecordLine(n int) {
	if LinesRead != nil {
		LinesRead.Inc()
	}
	if LineBytes != nil {
		LineBytes.Observe(float64(n))
	}
}

// RecordEmitted counts one rendered frame.
func RecordEmitted() {
	if FramesEmitted != nil {
		FramesEmitted.Inc()
	}
}

// RecordDropped counts one dropped line under reason.
func RecordDropped(reason string) {
	if FramesDropped != nil {
		FramesDropped.WithLabelValues(reason).Inc()
	}
}

// RecordFeedFrame counts one frame written by the feed; kind is "chat" or "keepalive".
func RecordFeedFrame(kind string) {
	if FeedFrames != nil {
		FeedFrames.WithLabelValues(kind).Inc()
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
