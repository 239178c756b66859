package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"posrail/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate into business errors.
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// TranslateError maps low-level database errors onto the application error
// taxonomy. Lock and serialization failures become retryable
// CONCURRENT_MODIFICATION errors; everything else passes through.
func TranslateError(err error, entity string, entityID any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, entityID)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			return apperror.NewConcurrentModification(entity, entityID).WithCause(err)
		case pgCodeUniqueViolation:
			return apperror.NewConflict("record already exists").
				WithDetail("entity", entity).
				WithCause(err)
		}
	}

	return err
}
