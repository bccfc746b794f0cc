package postgres

import (
	"errors"
	"fmt"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsWriteConflict reports a race another transaction won: the booking
// exclusion constraint, a serialization failure or a deadlock.
func IsWriteConflict(err error) bool {
	switch pgCode(err) {
	case codeExclusionViolation, codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
		return true
	}
	return false
}

func asWriteConflict(err error) error {
	if err == nil || errors.Is(err, booking.ErrWriteConflict) || !IsWriteConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %v", booking.ErrWriteConflict, err)
}
