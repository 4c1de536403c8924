package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"reportsql/internal/caseparse"
	"reportsql/internal/domain"
)

// TransformRepo stores transform specifications. Rows persisted by older
// releases may carry only the emitted CASE SQL; Get and List reconstruct the
// structured form from it via the round-trip parser.
type TransformRepo struct {
	db     *sql.DB
	parser *caseparse.Parser
}

// NewTransformRepo creates a TransformRepo.
func NewTransformRepo(db *sql.DB, parser *caseparse.Parser) *TransformRepo {
	if parser == nil {
		parser = caseparse.New(nil)
	}
	return &TransformRepo{db: db, parser: parser}
}

// Create persists a new transform and returns it with ID and timestamps set.
func (r *TransformRepo) Create(ctx context.Context, name string, t domain.Transform) (domain.SavedTransform, error) {
	spec, err := domain.MarshalTransform(t)
	if err != nil {
		return domain.SavedTransform{}, err
	}
	scope := t.TransformScope()
	now := time.Now().UTC()
	saved := domain.SavedTransform{
		ID:        uuid.NewString(),
		Name:      name,
		Scope:     scope,
		Spec:      t,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transforms (id, name, kind, scope_level, scope_table, scope_widget, spec, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, name, string(t.Kind()), string(scope.Level), scope.Table, scope.Widget, string(spec), now, now,
	)
	if err != nil {
		return domain.SavedTransform{}, mapDBError(err)
	}
	return saved, nil
}

// Get returns one transform by ID.
func (r *TransformRepo) Get(ctx context.Context, id string) (domain.SavedTransform, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, scope_level, scope_table, scope_widget, spec, raw_sql, created_at, updated_at
		FROM transforms WHERE id = ?`, id)
	return r.scan(row)
}

// ListVisible returns the transforms visible to the given query scope, in
// creation order. Creation order is the resolution order the compiler uses.
func (r *TransformRepo) ListVisible(ctx context.Context, query domain.Scope) ([]domain.SavedTransform, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, scope_level, scope_table, scope_widget, spec, raw_sql, created_at, updated_at
		FROM transforms
		WHERE scope_level = 'datasource'
		   OR (scope_level = 'table' AND scope_table = ?)
		   OR (scope_level = 'widget' AND scope_widget = ?)
		ORDER BY created_at, id`,
		query.Table, query.Widget,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.SavedTransform
	for rows.Next() {
		saved, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// Update replaces the spec of an existing transform.
func (r *TransformRepo) Update(ctx context.Context, id, name string, t domain.Transform) (domain.SavedTransform, error) {
	spec, err := domain.MarshalTransform(t)
	if err != nil {
		return domain.SavedTransform{}, err
	}
	scope := t.TransformScope()
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE transforms
		SET name = ?, kind = ?, scope_level = ?, scope_table = ?, scope_widget = ?, spec = ?, raw_sql = '', updated_at = ?
		WHERE id = ?`,
		name, string(t.Kind()), string(scope.Level), scope.Table, scope.Widget, string(spec), now, id,
	)
	if err != nil {
		return domain.SavedTransform{}, mapDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.SavedTransform{}, domain.ErrNotFound("transform %s not found", id)
	}
	return r.Get(ctx, id)
}

// Delete removes a transform.
func (r *TransformRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transforms WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound("transform %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TransformRepo) scan(row rowScanner) (domain.SavedTransform, error) {
	var (
		saved      domain.SavedTransform
		scopeLevel string
		spec       sql.NullString
	)
	err := row.Scan(
		&saved.ID, &saved.Name,
		&scopeLevel, &saved.Scope.Table, &saved.Scope.Widget,
		&spec, &saved.RawSQL,
		&saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return domain.SavedTransform{}, mapDBError(err)
	}
	saved.Scope.Level = domain.ScopeLevel(scopeLevel)

	if spec.Valid && spec.String != "" {
		t, err := domain.UnmarshalTransform([]byte(spec.String))
		if err != nil {
			return domain.SavedTransform{}, err
		}
		saved.Spec = t
		return saved, nil
	}

	// Legacy row: only the emitted CASE SQL was persisted. Reconstruct the
	// structure so the editor can re-open it; if the text does not round
	// trip the caller falls back to raw-SQL editing via RawSQL.
	if saved.RawSQL != "" {
		if caseSpec, ok := r.parser.Parse(saved.RawSQL); ok {
			saved.Spec = domain.Case{
				Scope:  saved.Scope,
				Target: caseSpec.Target,
				Groups: caseSpec.Groups,
				Else:   caseSpec.Else,
			}
		}
	}
	return saved, nil
}
