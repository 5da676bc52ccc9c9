// Package wash exposes the session inventory and evaluation operations
// over HTTP.
package wash

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pollenops/pollenguard/app"
	"github.com/pollenops/pollenguard/core/air"
	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/core/logger"
	"github.com/pollenops/pollenguard/core/model"
	"github.com/pollenops/pollenguard/pkg/importer"
)

// Service is the subset of app.Service the handlers need.
type Service interface {
	Sessions() *fleet.Store
	Evaluate(ctx context.Context, session *fleet.Session, opts app.EvaluateOptions) (fleet.Report, error)
}

// Handler routes the wash API.
type Handler struct {
	svc Service
	log logger.Logger
	mux *http.ServeMux
}

// NewHandler builds the API router.
func NewHandler(svc Service, log logger.Logger) *Handler {
	h := &Handler{svc: svc, log: log, mux: http.NewServeMux()}
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.HandleFunc("/api/sessions", h.sessions)
	h.mux.HandleFunc("/api/sessions/", h.sessionSubtree)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessions handles POST /api/sessions.
func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := h.svc.Sessions().Create()
	if r.URL.Query().Get("demo") == "true" {
		s.SeedDemo()
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.ID})
}

// sessionSubtree dispatches /api/sessions/{sid}/...
func (h *Handler) sessionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	session, ok := h.svc.Sessions().Get(parts[0])
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	switch {
	case len(parts) == 2 && parts[1] == "vehicles":
		h.vehicles(w, r, session)
	case len(parts) == 3 && parts[1] == "vehicles":
		h.vehicle(w, r, session, parts[2])
	case len(parts) == 2 && parts[1] == "import":
		h.importCSV(w, r, session)
	case len(parts) == 2 && parts[1] == "evaluate":
		h.evaluate(w, r, session)
	default:
		http.NotFound(w, r)
	}
}

// vehicles handles GET and POST /api/sessions/{sid}/vehicles.
func (h *Handler) vehicles(w http.ResponseWriter, r *http.Request, s *fleet.Session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Vehicles())
	case http.MethodPost:
		var v model.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, "invalid vehicle payload", http.StatusBadRequest)
			return
		}
		added, err := s.Add(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// vehicle handles DELETE /api/sessions/{sid}/vehicles/{vid}. Removal is by
// stable identifier only.
func (h *Handler) vehicle(w http.ResponseWriter, r *http.Request, s *fleet.Session, id string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Remove(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importCSV handles POST /api/sessions/{sid}/import. The batch is rejected
// whole on any validation error, leaving the inventory untouched.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request, s *fleet.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicles, err := importer.ReadCSV(r.Body)
	if err != nil {
		var verr *importer.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.AddAll(vehicles); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": len(vehicles)})
}

// evaluate handles POST /api/sessions/{sid}/evaluate.
func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, s *fleet.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	opts := app.EvaluateOptions{
		LocationQuery: q.Get("location"),
		Simulate:      q.Get("simulate") == "true",
		Explain:       q.Get("explain") == "true",
	}
	report, err := h.svc.Evaluate(r.Context(), s, opts)
	if err != nil {
		h.writeEvaluateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeEvaluateError maps evaluation failures to specific, actionable
// responses; no raw internals leak to the client.
func (h *Handler) writeEvaluateError(w http.ResponseWriter, err error) {
	var perr *air.ProviderError
	switch {
	case errors.Is(err, fleet.ErrNoInventory):
		http.Error(w, "no vehicles in inventory", http.StatusConflict)
	case errors.Is(err, geo.ErrNotFound):
		http.Error(w, "location not found", http.StatusUnprocessableEntity)
	case errors.As(err, &perr):
		h.log.Errorf("evaluation failed: %v", err)
		http.Error(w, "air quality provider unavailable", http.StatusBadGateway)
	default:
		h.log.Errorf("evaluation failed: %v", err)
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
