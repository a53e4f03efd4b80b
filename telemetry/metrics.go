// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	UpstreamRequests *prometheus.CounterVec // twitch helix calls by operation and outcome
	TokenExchanges   prometheus.Counter
	PostsCreated     *prometheus.CounterVec // board posts by kind
	ReactionToggles  prometheus.Counter
	RateLimited      prometheus.Counter
	ChatLinesStored  prometheus.Counter

	// Histograms (seconds)
	UpstreamDuration prometheus.Observer
	RequestDuration  prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "site_upstream_requests_total",
			Help: "Twitch Helix requests by operation and outcome",
		}, []string{"op", "outcome"})
		TokenExchanges = promauto.NewCounter(prometheus.CounterOpts{
			Name: "site_token_exchanges_total",
			Help: "Twitch app token credential exchanges performed",
		})
		PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "site_board_posts_created_total",
			Help: "Community board posts created by kind",
		}, []string{"kind"})
		ReactionToggles = promauto.NewCounter(prometheus.CounterOpts{
			Name: "site_board_reaction_toggles_total",
			Help: "Reaction toggle operations handled",
		})
		RateLimited = promauto.NewCounter(prometheus.CounterOpts{
			Name: "site_rate_limited_requests_total",
			Help: "Requests rejected by the fixed-window rate limiter",
		})
		ChatLinesStored = promauto.NewCounter(prometheus.CounterOpts{
			Name: "site_chat_lines_stored_total",
			Help: "Chat highlight lines recorded",
		})
		UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "site_upstream_request_duration_seconds", Help: "Twitch Helix request duration seconds", Buckets: prometheus.DefBuckets,
		})
		RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "site_http_request_duration_seconds", Help: "HTTP request duration seconds", Buckets: prometheus.DefBuckets,
		})
	})
}

// CountUpstream records one Helix call outcome if metrics are initialized.
func CountUpstream(op string, err error) {
	if UpstreamRequests == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(op, outcome).Inc()
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
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
