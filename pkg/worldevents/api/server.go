// Package api serves an Engine over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/events                  active events
//	POST /v1/events                  trigger an event from a template
//	GET  /v1/events/{id}             active or resolved event
//	POST /v1/events/{id}/resolve     resolve; idempotent
//	GET  /v1/history                 resolved events
//	GET  /v1/ports/{id}/impacts      per-event impacts plus the aggregate
//	GET  /v1/routes/{id}/impacts     per-event route impacts
//	GET  /v1/area                    events touching a lat/lon box
//	GET  /v1/risk                    global risk assessment
//	GET  /v1/forecast?days=N         merged forecast
//	GET  /v1/notifications           server-sent notification stream
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

// DefaultRequestTimeout bounds every request except the notification
// stream.
const DefaultRequestTimeout = 30 * time.Second

// Server exposes an Engine over HTTP.
type Server struct {
	engine  *worldevents.Engine
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a server for engine.
func New(engine *worldevents.Engine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		logger:  slog.Default(),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = observability.EnrichLogger(s.logger, "api")
	return s
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/notifications", s.handleNotifications)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout))

			r.Get("/events", s.handleListEvents)
			r.Post("/events", s.handleTriggerEvent)
			r.Get("/events/{id}", s.handleGetEvent)
			r.Post("/events/{id}/resolve", s.handleResolveEvent)
			r.Get("/history", s.handleHistory)

			r.Get("/ports/{id}/impacts", s.handlePortImpacts)
			r.Get("/routes/{id}/impacts", s.handleRouteImpacts)
			r.Get("/area", s.handleArea)

			r.Get("/risk", s.handleRisk)
			r.Get("/forecast", s.handleForecast)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		elapsed := observability.TimedOperation()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", elapsed()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Error codes in response bodies.
const (
	CodeBadRequest        = "bad_request"
	CodeNotFound          = "not_found"
	CodeAdmissionRejected = "admission_rejected"
	CodeInternal          = "internal"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, errorBody{Error: msg, Code: code})
}

// respondEngineError maps engine errors onto HTTP statuses.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	var ve *weerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Code: CodeBadRequest, Field: ve.Field})
	case errors.Is(err, worldevents.ErrAdmissionRejected):
		respondError(w, http.StatusConflict, CodeAdmissionRejected, err.Error())
	case errors.Is(err, worldevents.ErrUnknownPort), errors.Is(err, worldevents.ErrUnknownRoute):
		respondError(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		s.logger.Error("request failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	if limit <= 0 {
		limit = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
