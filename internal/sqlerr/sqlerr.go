// Package sqlerr classifies PostgreSQL errors returned through pgx.
package sqlerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the application reacts to.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique violation. When constraint
// is non-empty the violated constraint must also match.
func IsUniqueViolation(err error, constraint string) bool {
	return is(err, UniqueViolation, constraint)
}

// IsCheckViolation reports whether err violates the named CHECK constraint
// (any CHECK constraint when constraint is empty).
func IsCheckViolation(err error, constraint string) bool {
	return is(err, CheckViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return is(err, ForeignKeyViolation, "")
}

func is(err error, code, constraint string) bool {
	pgErr := pgError(err)
	if pgErr == nil || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
