// Package api exposes the compiler and the spec store over HTTP. The server
// never executes the emitted SQL; that belongs to the query-execution
// collaborator downstream.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reportsql/internal/caseparse"
	"reportsql/internal/db/repository"
	"reportsql/internal/dialect"
	"reportsql/internal/period"
)

// Handler carries the compiler defaults and store handles for all routes.
type Handler struct {
	log        *slog.Logger
	transforms *repository.TransformRepo
	filters    *repository.FilterRepo
	parser     *caseparse.Parser

	defaultDialect  *dialect.Dialect
	defaultCalendar period.Calendar

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(log *slog.Logger, transforms *repository.TransformRepo, filters *repository.FilterRepo, d *dialect.Dialect, cal period.Calendar) *Handler {
	if d == nil {
		d = dialect.Default
	}
	return &Handler{
		log:             log,
		transforms:      transforms,
		filters:         filters,
		parser:          caseparse.New(log),
		defaultDialect:  d,
		defaultCalendar: cal,
		now:             time.Now,
	}
}

// Routes mounts all endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/compile/where", h.handleCompileWhere)
		r.Post("/compile/transforms", h.handleCompileTransforms)
		r.Post("/parse/case", h.handleParseCase)
		r.Get("/periods/{preset}", h.handleResolvePeriod)

		r.Route("/transforms", func(r chi.Router) {
			r.Get("/", h.handleListTransforms)
			r.Post("/", h.handleCreateTransform)
			r.Get("/{id}", h.handleGetTransform)
			r.Put("/{id}", h.handleUpdateTransform)
			r.Delete("/{id}", h.handleDeleteTransform)
		})

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", h.handleListFilters)
			r.Post("/", h.handleCreateFilter)
			r.Get("/{id}", h.handleGetFilter)
			r.Delete("/{id}", h.handleDeleteFilter)
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- request helpers ---

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// dialectFor resolves the request dialect, falling back to the server
// default.
func (h *Handler) dialectFor(name string) (*dialect.Dialect, error) {
	if name == "" {
		return h.defaultDialect, nil
	}
	return dialect.Lookup(name)
}

// calendarParams overrides the server's default calendar per request.
type calendarParams struct {
	WeekStartDay string `json:"week_start_day,omitempty"`
	Weekend      string `json:"weekend,omitempty"`
}

func (h *Handler) calendarFor(p *calendarParams) (period.Calendar, error) {
	cal := h.defaultCalendar
	if p == nil {
		return cal, nil
	}
	if p.WeekStartDay != "" {
		d, err := period.ParseWeekday(p.WeekStartDay)
		if err != nil {
			return cal, err
		}
		cal.WeekStartDay = d
	}
	if p.Weekend != "" {
		w, err := period.ParseWeekend(p.Weekend)
		if err != nil {
			return cal, err
		}
		cal.Weekend = w
	}
	return cal, nil
}

// nowFor parses an optional RFC 3339 override used to pin period presets.
func (h *Handler) nowFor(raw string) (time.Time, error) {
	if raw == "" {
		return h.now(), nil
	}
	return time.Parse(time.RFC3339, raw)
}
