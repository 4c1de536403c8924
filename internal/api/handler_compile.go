package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"reportsql/internal/domain"
	"reportsql/internal/period"
	"reportsql/internal/predicate"
	"reportsql/internal/transform"
)

type compileWhereRequest struct {
	Dialect  string            `json:"dialect,omitempty"`
	Now      string            `json:"now,omitempty"`
	Calendar *calendarParams   `json:"calendar,omitempty"`
	Filters  domain.FilterSpec `json:"filters"`
}

type compileWhereResponse struct {
	// SQL is the bare boolean fragment; empty when nothing is filtered.
	SQL string `json:"sql"`
	// WhereClause is " WHERE <sql>", or empty; never WHERE 1=1.
	WhereClause string `json:"where_clause"`
}

func (h *Handler) handleCompileWhere(w http.ResponseWriter, r *http.Request) {
	var req compileWhereRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	d, err := h.dialectFor(req.Dialect)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cal, err := h.calendarFor(req.Calendar)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	now, err := h.nowFor(req.Now)
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid now timestamp: %v", err))
		return
	}

	sql, err := predicate.CompileWhere(req.Filters, predicate.Options{Dialect: d, Now: now, Calendar: cal})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := compileWhereResponse{SQL: sql}
	if sql != "" {
		resp.WhereClause = " WHERE " + sql
	}
	writeJSON(w, http.StatusOK, resp)
}

type compileTransformsRequest struct {
	Dialect          string               `json:"dialect,omitempty"`
	Base             string               `json:"base"`
	Table            string               `json:"table,omitempty"`
	Widget           string               `json:"widget,omitempty"`
	AvailableColumns []string             `json:"available_columns"`
	Transforms       domain.TransformList `json:"transforms"`
}

func (h *Handler) handleCompileTransforms(w http.ResponseWriter, r *http.Request) {
	var req compileTransformsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	if req.Base == "" {
		h.writeError(w, r, domain.ErrValidation("base is required"))
		return
	}

	d, err := h.dialectFor(req.Dialect)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query := domain.Scope{Table: req.Table, Widget: req.Widget}
	compiler := transform.NewCompiler(d, h.log)
	result, err := compiler.Compile(req.Base, query, req.Transforms, req.AvailableColumns)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type parseCaseRequest struct {
	SQL string `json:"sql"`
}

type parseCaseResponse struct {
	// Parsed is false when the text did not fully round-trip; Case then
	// holds whatever prefix parsed and the client falls back to raw-text
	// editing.
	Parsed bool            `json:"parsed"`
	Case   domain.CaseSpec `json:"case"`
}

func (h *Handler) handleParseCase(w http.ResponseWriter, r *http.Request) {
	var req parseCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	spec, ok := h.parser.Parse(req.SQL)
	writeJSON(w, http.StatusOK, parseCaseResponse{Parsed: ok, Case: spec})
}

type resolvePeriodResponse struct {
	Preset string `json:"preset"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (h *Handler) handleResolvePeriod(w http.ResponseWriter, r *http.Request) {
	preset, err := period.ParsePreset(chi.URLParam(r, "preset"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	cal, err := h.calendarFor(&calendarParams{
		WeekStartDay: q.Get("week_start_day"),
		Weekend:      q.Get("weekend"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	now, err := h.nowFor(q.Get("now"))
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid now timestamp: %v", err))
		return
	}

	rng, err := period.Resolve(preset, now, cal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolvePeriodResponse{
		Preset: string(preset),
		Start:  rng.StartDate(),
		End:    rng.EndDate(),
	})
}
