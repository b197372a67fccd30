package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jaftdelgado/aureum-services/internal/common"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ConstraintName returns the name of the violated constraint, or "" when err
// is not a Postgres error.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// ConstraintError is a unique violation translated to common.ErrorConflict
// that keeps the name of the constraint that fired.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("conflict on %s: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool { return target == common.ErrorConflict }

// MapError translates a driver error into the repository contract:
// sql.ErrNoRows becomes common.ErrorNotFound, a unique violation becomes a
// *ConstraintError matching common.ErrorConflict, anything else is wrapped
// as a db error.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case IsUniqueViolation(err):
		return &ConstraintError{Constraint: ConstraintName(err), Err: err}
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// IsConstraint reports whether err is a conflict raised by the named
// constraint.
func IsConstraint(err error, name string) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Constraint == name
}
