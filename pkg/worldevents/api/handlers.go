package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/impact"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
)

// Forecast horizon bounds for GET /v1/forecast.
const (
	DefaultForecastDays = 7
	MaxForecastDays     = 90
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"running":       s.engine.Running(),
		"active_events": len(s.engine.ActiveEvents()),
		"time":          s.engine.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"events": s.engine.ActiveEvents()})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"events": s.engine.History()})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, ok := s.engine.Event(id)
	if !ok {
		respondError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("event %q not found", id))
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// triggerRequest is a model.Template with a human-readable duration.
type triggerRequest struct {
	Type        *model.EventType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Severity    *model.Severity  `json:"severity"`
	Scope       model.Scope      `json:"scope"`
	Duration    string           `json:"duration"`
	Impacts     []model.Impact   `json:"impacts"`
	Tags        []string         `json:"tags"`
}

func (req triggerRequest) template() (model.Template, error) {
	if req.Type == nil {
		return model.Template{}, weerrors.Invalid("type", "required")
	}
	if req.Severity == nil {
		return model.Template{}, weerrors.Invalid("severity", "required")
	}
	tpl := model.Template{
		Type:        *req.Type,
		Title:       req.Title,
		Description: req.Description,
		Severity:    *req.Severity,
		Scope:       req.Scope,
		Impacts:     req.Impacts,
		Tags:        req.Tags,
	}
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil {
			return model.Template{}, weerrors.Invalid("duration", "%v", err)
		}
		tpl.Duration = d
	}
	return tpl, nil
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeJSON(w, r, &req, 64*1024); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	tpl, err := req.template()
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	ev, err := s.engine.TriggerEvent(r.Context(), tpl)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

type resolveRequest struct {
	Resolution model.Resolution `json:"resolution"`
}

// handleResolveEvent answers 204 whether or not the event was still active.
func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req, 4*1024); err != nil {
			respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
	}
	s.engine.ResolveEvent(r.Context(), chi.URLParam(r, "id"), req.Resolution)
	w.WriteHeader(http.StatusNoContent)
}

type portImpactsResponse struct {
	Assessment impact.PortAssessment `json:"assessment"`
	Impacts    []impact.PortImpact   `json:"impacts"`
}

func (s *Server) handlePortImpacts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	impacts, err := s.engine.EventsAffectingPort(id)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	assessment, err := s.engine.AssessPort(id)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	if impacts == nil {
		impacts = []impact.PortImpact{}
	}
	respondJSON(w, http.StatusOK, portImpactsResponse{Assessment: assessment, Impacts: impacts})
}

func (s *Server) handleRouteImpacts(w http.ResponseWriter, r *http.Request) {
	impacts, err := s.engine.EventsAffectingRoute(chi.URLParam(r, "id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	if impacts == nil {
		impacts = []impact.RouteImpact{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"impacts": impacts})
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var b model.Bounds
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"min_lat", &b.MinLat},
		{"max_lat", &b.MaxLat},
		{"min_lon", &b.MinLon},
		{"max_lon", &b.MaxLon},
	} {
		v, err := strconv.ParseFloat(q.Get(f.name), 64)
		if err != nil {
			s.respondEngineError(w, weerrors.Invalid(f.name, "must be a number, got %q", q.Get(f.name)))
			return
		}
		*f.dst = v
	}

	events, err := s.engine.EventsInArea(b)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	if events == nil {
		events = []model.WorldEvent{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleRisk(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.GlobalRiskAssessment())
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	days := DefaultForecastDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxForecastDays {
			s.respondEngineError(w, weerrors.Invalid("days", "must be an integer in [1,%d], got %q", MaxForecastDays, raw))
			return
		}
		days = n
	}
	f, err := s.engine.GenerateEventForecast(r.Context(), days)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

// handleNotifications streams notifications as server-sent events until the
// client disconnects or the engine stops. Repeated kind parameters filter
// the stream.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, CodeInternal, "streaming unsupported")
		return
	}

	var kinds []notify.Kind
	for _, raw := range r.URL.Query()["kind"] {
		k := notify.Kind(raw)
		if !slices.Contains(notify.Kinds, k) {
			s.respondEngineError(w, weerrors.Invalid("kind", "unknown notification kind %q", raw))
			return
		}
		kinds = append(kinds, k)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for n := range s.engine.Stream(r.Context(), kinds...) {
		data, err := json.Marshal(n)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", n.Sequence, n.Kind, data); err != nil {
			return
		}
		flusher.Flush()
	}
}
