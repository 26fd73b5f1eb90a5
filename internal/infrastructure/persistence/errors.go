package persistence

import (
	"errors"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL error codes the registry reacts to
const (
	pgUniqueViolation      = "23505"
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// ErrLockOutsideTransaction is returned when a row lock is requested on a
// handle that is not bound to a transaction.
var ErrLockOutsideTransaction = errors.New("persistence: row lock requires an open transaction")

// translateError maps driver errors to domain errors. duplicate is returned
// for unique-constraint violations; pass nil when the statement cannot
// violate one.
func translateError(err error, duplicate error) error {
	if err == nil {
		return nil
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) && duplicate != nil {
		return duplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if duplicate != nil {
				return duplicate
			}
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
			return shared.ErrTransient
		}
	}
	return err
}

// IsTransient reports whether err is worth retrying by the caller
func IsTransient(err error) bool {
	return shared.HasCode(err, shared.CodeTransient)
}
