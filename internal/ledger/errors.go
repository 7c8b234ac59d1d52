package ledger

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of every caller-level precondition failure.
// Row-level problems never produce it; malformed rows are dropped instead.
var ErrInvalidInput = errors.New("invalid reconciliation input")

// ErrPeriodMismatch is returned when the number of ledgers and period labels differ.
var ErrPeriodMismatch = fmt.Errorf("%w: ledger count does not match period label count", ErrInvalidInput)

// ValidationError describes a rejected multi-period request.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}
