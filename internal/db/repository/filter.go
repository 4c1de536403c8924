package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"reportsql/internal/domain"
)

// FilterRepo stores widget filter specifications as JSON.
type FilterRepo struct {
	db *sql.DB
}

// NewFilterRepo creates a FilterRepo.
func NewFilterRepo(db *sql.DB) *FilterRepo {
	return &FilterRepo{db: db}
}

// Create persists a filter spec for a widget.
func (r *FilterRepo) Create(ctx context.Context, widgetID string, spec domain.FilterSpec) (domain.SavedFilter, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return domain.SavedFilter{}, err
	}
	saved := domain.SavedFilter{
		ID:        uuid.NewString(),
		WidgetID:  widgetID,
		Spec:      spec,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO saved_filters (id, widget_id, spec, created_at) VALUES (?, ?, ?, ?)`,
		saved.ID, widgetID, string(body), saved.CreatedAt,
	)
	if err != nil {
		return domain.SavedFilter{}, mapDBError(err)
	}
	return saved, nil
}

// Get returns one saved filter by ID.
func (r *FilterRepo) Get(ctx context.Context, id string) (domain.SavedFilter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, widget_id, spec, created_at FROM saved_filters WHERE id = ?`, id)
	return scanFilter(row)
}

// ListByWidget returns the filters saved for one widget, oldest first.
func (r *FilterRepo) ListByWidget(ctx context.Context, widgetID string) ([]domain.SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, widget_id, spec, created_at FROM saved_filters
		WHERE widget_id = ? ORDER BY created_at, id`, widgetID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.SavedFilter
	for rows.Next() {
		saved, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// Delete removes a saved filter.
func (r *FilterRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound("filter %s not found", id)
	}
	return nil
}

func scanFilter(row rowScanner) (domain.SavedFilter, error) {
	var (
		saved domain.SavedFilter
		body  string
	)
	if err := row.Scan(&saved.ID, &saved.WidgetID, &body, &saved.CreatedAt); err != nil {
		return domain.SavedFilter{}, mapDBError(err)
	}
	if err := json.Unmarshal([]byte(body), &saved.Spec); err != nil {
		return domain.SavedFilter{}, domain.ErrValidation("stored filter %s is corrupt: %v", saved.ID, err)
	}
	return saved, nil
}
