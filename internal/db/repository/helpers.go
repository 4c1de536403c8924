// Package repository implements the persistence collaborator for structured
// transform and filter specifications over the SQLite spec store.
package repository

import (
	"database/sql"
	"errors"

	"reportsql/internal/domain"
)

// mapDBError converts database/sql errors to domain errors.
func mapDBError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("not found")
	}
	return err
}
