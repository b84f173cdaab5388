// Package pgerr maps driver and gorm failures onto the errs taxonomy so that repositories
// report timeouts and dropped connections as retryable and constraint violations as conflicts.
package pgerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes handled explicitly.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
	QueryCanceled        = "57014"
	AdminShutdown        = "57P01"
	CannotConnectNow     = "57P03"
)

// IsUniqueViolation reports whether err is a unique constraint violation, optionally on the
// named constraint (empty matches any).
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return errors.Is(err, gorm.ErrDuplicatedKey) && constraint == ""
	}
	return pgErr.Code == UniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// Translate classifies err raised by operation. nil stays nil; gorm.ErrRecordNotFound is
// returned untouched because only the caller knows which object was missing.
func Translate(operation string, err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if isTransient(err) {
		return errs.NewUnavailableError(operation, err)
	}

	if IsUniqueViolation(err, "") {
		return errs.NewConflictErrorWithCause(operation+": duplicate key", err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailure, DeadlockDetected, LockNotAvailable, QueryCanceled, AdminShutdown, CannotConnectNow:
			return true
		}
		// Class 08: connection exception.
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "08"
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
