package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reportsql/internal/domain"
)

// transformResource is the wire form of a saved transform. Transform is the
// tagged envelope; RawSQL is set for legacy rows that did not round-trip.
type transformResource struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Transform json.RawMessage `json:"transform,omitempty"`
	RawSQL    string          `json:"raw_sql,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func transformToAPI(saved domain.SavedTransform) (transformResource, error) {
	res := transformResource{
		ID:        saved.ID,
		Name:      saved.Name,
		RawSQL:    saved.RawSQL,
		CreatedAt: saved.CreatedAt,
		UpdatedAt: saved.UpdatedAt,
	}
	if saved.Spec != nil {
		body, err := domain.MarshalTransform(saved.Spec)
		if err != nil {
			return transformResource{}, err
		}
		res.Transform = body
	}
	return res, nil
}

type saveTransformRequest struct {
	Name      string          `json:"name"`
	Transform json.RawMessage `json:"transform"`
}

func (r saveTransformRequest) decode() (string, domain.Transform, error) {
	if r.Name == "" {
		return "", nil, domain.ErrValidation("name is required")
	}
	if len(r.Transform) == 0 {
		return "", nil, domain.ErrValidation("transform is required")
	}
	t, err := domain.UnmarshalTransform(r.Transform)
	if err != nil {
		return "", nil, err
	}
	return r.Name, t, nil
}

func (h *Handler) handleCreateTransform(w http.ResponseWriter, r *http.Request) {
	var req saveTransformRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	name, t, err := req.decode()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	saved, err := h.transforms.Create(r.Context(), name, t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := transformToAPI(saved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleListTransforms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.Scope{Table: q.Get("table"), Widget: q.Get("widget")}

	list, err := h.transforms.ListVisible(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]transformResource, 0, len(list))
	for _, saved := range list {
		res, err := transformToAPI(saved)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transforms": out})
}

func (h *Handler) handleGetTransform(w http.ResponseWriter, r *http.Request) {
	saved, err := h.transforms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := transformToAPI(saved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpdateTransform(w http.ResponseWriter, r *http.Request) {
	var req saveTransformRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	name, t, err := req.decode()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	saved, err := h.transforms.Update(r.Context(), chi.URLParam(r, "id"), name, t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := transformToAPI(saved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDeleteTransform(w http.ResponseWriter, r *http.Request) {
	if err := h.transforms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- saved filters ---

type filterResource struct {
	ID        string            `json:"id"`
	WidgetID  string            `json:"widget_id"`
	Spec      domain.FilterSpec `json:"spec"`
	CreatedAt time.Time         `json:"created_at"`
}

func filterToAPI(saved domain.SavedFilter) filterResource {
	return filterResource{
		ID:        saved.ID,
		WidgetID:  saved.WidgetID,
		Spec:      saved.Spec,
		CreatedAt: saved.CreatedAt,
	}
}

type saveFilterRequest struct {
	WidgetID string            `json:"widget_id"`
	Spec     domain.FilterSpec `json:"spec"`
}

func (h *Handler) handleCreateFilter(w http.ResponseWriter, r *http.Request) {
	var req saveFilterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	if req.WidgetID == "" {
		h.writeError(w, r, domain.ErrValidation("widget_id is required"))
		return
	}

	saved, err := h.filters.Create(r.Context(), req.WidgetID, req.Spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, filterToAPI(saved))
}

func (h *Handler) handleListFilters(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("widget")
	if widgetID == "" {
		h.writeError(w, r, domain.ErrValidation("widget query parameter is required"))
		return
	}

	list, err := h.filters.ListByWidget(r.Context(), widgetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]filterResource, 0, len(list))
	for _, saved := range list {
		out = append(out, filterToAPI(saved))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"filters": out})
}

func (h *Handler) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	saved, err := h.filters.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterToAPI(saved))
}

func (h *Handler) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.filters.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
