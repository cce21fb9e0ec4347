package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories classify
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isForeignKeyViolation reports whether err is a foreign key violation. A
// non-empty constraint narrows the match to that constraint.
func isForeignKeyViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != pgForeignKeyViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation
}
