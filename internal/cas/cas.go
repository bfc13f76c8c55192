// Package cas implements optimistic-concurrency version checks shared by
// every mutating service operation: a write only applies if the caller's
// expected version still matches the stored version, otherwise it fails
// with a conflict that the caller may retry against the refreshed value.
package cas

import (
	"context"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// MaxRetries bounds how many times a CAS mutation re-reads and retries
// after a stale-version conflict before giving up and surfacing the
// conflict to the caller.
const MaxRetries = 3

// CheckVersion returns a conflict error if expected does not match
// current. A zero expected version means "no version precondition was
// supplied", which callers use for unconditional writes.
func CheckVersion(expected, current uint64) error {
	if expected != 0 && expected != current {
		return vdberr.Conflict("version mismatch: entity has been modified since it was read")
	}
	return nil
}

// Mutate reads the current entity with read, applies mutate, and writes
// the result with write, retrying up to MaxRetries times if write
// reports a version conflict. read must return the authoritative
// current version each call; write must perform its own CheckVersion
// against the entity it is given and return a *vdberr.Error with
// KindConflict on mismatch.
func Mutate[T any](ctx context.Context, read func() (T, error), write func(T) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		current, err := read()
		if err != nil {
			return zero, err
		}

		result, err := write(current)
		if err == nil {
			return result, nil
		}
		if !vdberr.IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}
