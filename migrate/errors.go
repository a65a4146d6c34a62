package migrate

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidPlan indicates a plan that cannot be applied.
	ErrInvalidPlan = errors.New("idbschema: invalid migration plan")
	// ErrReservedSlot indicates an upgrade registered on a slot reserved by
	// a nil snapshot.
	ErrReservedSlot = errors.New("idbschema: upgrade registered on a reserved slot")
	// ErrBreakingChange indicates a plan step the engine cannot perform.
	ErrBreakingChange = errors.New("idbschema: breaking schema change")
	// ErrLockMismatch indicates a plan that no longer matches its lock file.
	ErrLockMismatch = errors.New("idbschema: plan does not match lock")
)

// SnapshotError reports a snapshot that failed to compile.
type SnapshotError struct {
	// Index is the position of the snapshot in the input sequence.
	Index int
	// Slot is the slot the snapshot would have taken.
	Slot  int
	Cause error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("idbschema: snapshot %d (slot %d): %v", e.Index, e.Slot, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// IsSnapshotError reports whether the error is a SnapshotError.
func IsSnapshotError(err error) bool {
	var snapErr *SnapshotError
	return errors.As(err, &snapErr)
}
