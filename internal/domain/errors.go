package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidTransitionError reports an illegal or stale state-machine move. It
// always carries the status the order actually had and the attempted target
// so the caller can explain the rejection.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// TableUnavailableError rejects a DINE_IN order against a table that cannot
// seat it.
type TableUnavailableError struct {
	TableID string
	Status  TableStatus
}

func (e *TableUnavailableError) Error() string {
	return fmt.Sprintf("table %s unavailable (status %s)", e.TableID, e.Status)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
