package repository

import (
	"errors"
	"fmt"
	"time"

	"kbo_pickem/server/internal/metrics"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup or targeted write matches no row
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on unique constraint violations
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a foreign key points at a missing row
	ErrInvalidReference = errors.New("invalid reference")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// classify maps constraint violations onto the package sentinels, keeping the original as cause
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation, pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
	}
	return err
}

// observe records a query outcome; call as `defer observe("select", "games", time.Now(), &err)`
func observe(operation, table string, start time.Time, errp *error) {
	status := "success"
	if errp != nil && *errp != nil && !errors.Is(*errp, ErrNotFound) {
		status = "error"
	}
	metrics.RecordDBQuery(operation, table, status, time.Since(start).Seconds())
}
