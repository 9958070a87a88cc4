package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories translate
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

// pgErrorCode extracts the SQLSTATE from either driver's error type
func pgErrorCode(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == codeForeignKeyViolation
}

func isCheckViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == codeCheckViolation
}

// violatedConstraint returns the constraint name reported by the server, if any
func violatedConstraint(err error) string {
	_, name, _ := pgErrorCode(err)
	return name
}

func isStringTooLong(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == codeStringTooLong
}
