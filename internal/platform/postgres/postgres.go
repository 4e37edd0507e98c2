// Package postgres opens the shared database handle and translates driver
// errors into infrastructure sentinels so store code stays uniform.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"udonmap/pkg/platform/sentinel"
)

// Open connects and verifies the database handle.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Translate maps driver-level failures to sentinels the service layer turns
// into operator guidance: missing relations mean the schema (or an index)
// has not been provisioned; privilege failures mean store-side access rules
// refused the caller.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01", "42703": // undefined_table, undefined_column
			return fmt.Errorf("%w: %s", sentinel.ErrIndexRequired, pqErr.Message)
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s", sentinel.ErrPermission, pqErr.Message)
		case "23505": // unique_violation
			return sentinel.ErrConflict
		}
		if pqErr.Code.Class() == "08" { // connection exceptions
			return fmt.Errorf("%w: %s", sentinel.ErrUnavailable, pqErr.Message)
		}
	}
	return err
}
