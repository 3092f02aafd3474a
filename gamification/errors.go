package gamification

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the scoring engine. Callers match with errors.Is and
// map them to HTTP status codes at the controller layer.
var (
	// ErrNotFound means the user id does not resolve to a known account.
	ErrNotFound = errors.New("gamification: not found")
	// ErrPersistence wraps storage read/write failures.
	ErrPersistence = errors.New("gamification: persistence failure")
	// ErrValidation means the input itself is malformed, e.g. an unknown period type.
	ErrValidation = errors.New("gamification: invalid input")
)

// persistErr wraps a storage error with its operation for ErrPersistence matching.
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
