// Package server exposes the HTTP API: the Twitch proxy endpoints, the
// community board, health probes, and metrics. It includes configurable CORS
// and injects correlation IDs into request contexts for consistent logging.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kyastream/site-backend/config"
	"github.com/kyastream/site-backend/ratelimit"
	"github.com/kyastream/site-backend/telemetry"
	"github.com/kyastream/site-backend/twitchapi"
)

// NewMux returns the HTTP handler with all routes, building the Helix client
// from the config's Twitch credentials. The provided context bounds the rate
// limiter janitor goroutine.
func NewMux(ctx context.Context, database *sql.DB, cfg *config.Config) http.Handler {
	helix := &twitchapi.HelixClient{
		AppTokenSource: &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret},
		ClientID:       cfg.TwitchClientID,
	}
	return NewMuxWithClient(ctx, database, cfg, helix)
}

// NewMuxWithClient is NewMux with an injected Helix client, used by tests to
// point at a fake upstream.
func NewMuxWithClient(ctx context.Context, database *sql.DB, cfg *config.Config, helix *twitchapi.HelixClient) http.Handler {
	corsCfg := loadCORSConfig()

	limiter := ratelimit.New()
	limiter.StartJanitor(ctx, time.Minute)

	handlers := NewHandlers(database, cfg, helix, limiter)

	mux := http.NewServeMux()

	// Metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health and readiness endpoints
	mux.HandleFunc("/healthz", handlers.HandleHealthz)
	mux.HandleFunc("/readyz", handlers.HandleReadyz)

	// Twitch proxy endpoints
	mux.HandleFunc("/api/twitch/live", handlers.HandleLive)
	mux.HandleFunc("/api/twitch/clips", handlers.HandleClips)
	mux.HandleFunc("/api/twitch/schedule", handlers.HandleSchedule)
	mux.HandleFunc("/api/twitch/chat", handlers.HandleChat)

	// Community board endpoints; writes go through the fixed-window limiter
	mux.HandleFunc("/api/community/messages", handlers.withWriteLimit(handlers.HandleMessages))
	mux.HandleFunc("/api/community/strategies", handlers.withWriteLimit(handlers.HandleStrategies))
	mux.HandleFunc("/api/community/reactions", handlers.withWriteLimit(handlers.HandleReactions))

	// Wrap with correlation ID injector and tracing middleware
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reuse corr header if provided else generate
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path,
			telemetry.HTTPMethodAttr(r.Method),
			telemetry.HTTPRouteAttr(r.URL.Path),
			telemetry.HTTPURLAttr(r.URL.String()),
		)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request start", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("component", "http"))

		// Capture status code via custom ResponseWriter
		wrappedWriter := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		telemetry.TimeFunc(telemetry.RequestDuration, func() {
			mux.ServeHTTP(wrappedWriter, r.WithContext(ctx))
		})

		telemetry.SetSpanHTTPStatus(span, wrappedWriter.statusCode)
		if wrappedWriter.statusCode >= 400 {
			code, msg := telemetry.ErrorStatus(fmt.Sprintf("HTTP %d", wrappedWriter.statusCode))
			span.SetStatus(code, msg)
		}
	})
	return withCORSConfig(handler, corsCfg)
}

// statusRecorder wraps ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, database *sql.DB, cfg *config.Config) error {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewMux(ctx, database, cfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		// WithoutCancel inherits context values but lets shutdown complete
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
