package services

import (
	"errors"
	"strings"
)

// Failure taxonomy surfaced to handlers. Every error leaving a service wraps
// one of these sentinels, so callers can errors.Is their way to a status code
// while the message keeps the specific violated constraint.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrInvalidAllocation = errors.New("invalid cost allocation")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCyclicReference   = errors.New("cyclic cost center reference")
	ErrHasDependents     = errors.New("record has dependent rows")
)

// isUniqueConstraintErr matches the sqlite unique-violation text; the driver
// does not expose a typed error for it.
func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
