package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations. Use errors.Is() in calling code.
var (
	// ErrSessionExists indicates a session with the same ID was already
	// stored. Session IDs are generated per run, so this usually means a
	// duplicate save of the same run.
	ErrSessionExists = errors.New("session already exists")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict
	// from concurrent writes to the same records. Callers should retry.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNotFound indicates the requested session does not exist.
	ErrNotFound = errors.New("session not found")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the matching
// sentinel. Returns the original error when it is not a QueryError or does
// not match a known pattern.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %s", ErrSessionExists, msg)
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}
