package postgres

import (
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"devroots/internal/errors"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// Unique constraint names from the migrations.
const (
	constraintAccountsUsername           = "ux_accounts_username"
	constraintAccountsNormalizedUsername = "ux_accounts_normalized_username"
	constraintAccountsNormalizedEmail    = "ux_accounts_normalized_email"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}

// uniqueViolationConstraint returns the violated constraint name, or "" when err is not a unique violation.
func uniqueViolationConstraint(err error) (string, bool) {
	if pgErr, ok := asPgError(err); ok && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

func isForeignKeyConstraintViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgForeignKeyViolation
	}

	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isNotNullConstraintViolation(err error) bool {
	pgErr, ok := asPgError(err)

	return ok && pgErr.Code == pgNotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgCheckViolation
	}

	return errors.Is(err, gorm.ErrCheckConstraintViolated)
}
