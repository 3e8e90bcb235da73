package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/pipeline"
	"github.com/couchcryptid/flood-area-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Journey is the set of sign-up operations the API exposes.
// It is implemented by *pipeline.Pipeline.
type Journey interface {
	sharedobs.ReadinessChecker
	Policy() domain.Policy
	CreateSession(ctx context.Context) (*session.Session, error)
	Session(ctx context.Context, id string) (*session.Session, error)
	WithSession(ctx context.Context, id string, fn func(*session.Session) error) error
	ResolvePlace(ctx context.Context, sess *session.Session, query string) (domain.PlaceSearch, error)
	SelectPlace(ctx context.Context, sess *session.Session, placeID string, radiusMiles float64) (session.Selection, error)
	UpdateSubscription(ctx context.Context, sess *session.Session, u pipeline.Update) (domain.SubscriptionSet, error)
}

// Server exposes the sign-up JSON API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	journey    Journey
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 session routes.
func NewServer(addr string, journey Journey, logger *slog.Logger) *Server {
	s := &Server{journey: journey, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(journey))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/places/search", s.handleSearchPlaces)
			r.Post("/places/{placeID}/select", s.handleSelectPlace)
			r.Get("/subscriptions", s.handleGetSubscriptions)
			r.Put("/subscriptions/warnings", s.handleApplySelection(domain.ActionWarning))
			r.Put("/subscriptions/alerts", s.handleApplySelection(domain.ActionAlert))
			r.Delete("/subscriptions/{areaID}", s.handleRemoveSubscription)
		})
	})

	// Selecting a place waits on every polygon download.
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger logs one line per request with the ID set by
// chimiddleware.RequestID.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
