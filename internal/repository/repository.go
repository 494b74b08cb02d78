// Package repository implements PostgreSQL persistence for users and
// sessions on top of a pgx pool.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zeedivx/web-starter/internal/apperr"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// mapError converts driver errors into application errors. Unique
// violations become DUPLICATE_RECORD with a message derived from the
// constraint name; everything else is a DATABASE_ERROR tagged with the
// failed operation.
func mapError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.DuplicateRecord(duplicateMessage(pgErr.ConstraintName))
	}
	return apperr.Database(operation, err)
}

func duplicateMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "email"):
		return "Email already exists"
	case strings.Contains(constraint, "username"):
		return "Username already exists"
	case strings.Contains(constraint, "token"):
		return "Session token already exists"
	default:
		return "Record already exists"
	}
}
