// Package pgerr classifies PostgreSQL errors into the domain error taxonomy.
package pgerr

import (
	"errors"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes that mean another writer holds or changed the row.
const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
)

// Translate maps storage errors for the named record:
//   - gorm.ErrRecordNotFound becomes *errs.ObjectNotFoundError
//   - serialization failures, deadlocks and lock timeouts become *errs.ConcurrentModificationError
//
// Anything else is returned unchanged.
func Translate(err error, paramName string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundErrorWithCause(paramName, id, err)
	}
	if IsConflict(err) {
		return errs.NewConcurrentModificationErrorWithCause(paramName, id, err)
	}
	return err
}

// IsConflict reports whether err is a PostgreSQL contention error.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case SerializationFailure, DeadlockDetected, LockNotAvailable:
		return true
	default:
		return false
	}
}
