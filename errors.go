package idbschema

import (
	"errors"
	"fmt"

	"github.com/syssam/idbschema/compiler/gen"
	"github.com/syssam/idbschema/migrate"
)

// Standard sentinel errors for common operations.
var (
	// ErrNoVersions is returned when the plan has no entry, because every
	// snapshot was nil.
	ErrNoVersions = errors.New("idbschema: plan has no versions")

	// ErrStoreNotFound is returned when a store is not declared by the
	// latest version.
	ErrStoreNotFound = errors.New("idbschema: store not found")
)

// Re-exported errors of the compiler and the sequencer, so callers of this
// package can match them without importing the subpackages.
var (
	ErrInvalidInput        = gen.ErrInvalidInput
	ErrInvalidSchema       = gen.ErrInvalidSchema
	ErrMissingPrimaryKey   = gen.ErrMissingPrimaryKey
	ErrDuplicatePrimaryKey = gen.ErrDuplicatePrimaryKey
	ErrAmbiguousIndex      = gen.ErrAmbiguousIndex
	ErrInvalidRelation     = gen.ErrInvalidRelation
	ErrMissingConfig       = gen.ErrMissingConfig
	ErrBreakingChange      = migrate.ErrBreakingChange
	ErrLockMismatch        = migrate.ErrLockMismatch
)

// StoreNotFoundError represents an error when a store is not declared.
type StoreNotFoundError struct {
	store   string
	version float64
}

// Error returns the error string.
func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("idbschema: store %s not found in version %v", e.store, e.version)
}

// Is reports whether the target error matches StoreNotFoundError.
// This allows errors.Is(err, ErrStoreNotFound) to return true.
func (e *StoreNotFoundError) Is(err error) bool {
	return err == ErrStoreNotFound
}

// Store returns the store name.
func (e *StoreNotFoundError) Store() string {
	return e.store
}

// Version returns the version that was searched.
func (e *StoreNotFoundError) Version() float64 {
	return e.version
}

// NewStoreNotFoundError returns a new StoreNotFoundError.
func NewStoreNotFoundError(store string, version float64) *StoreNotFoundError {
	return &StoreNotFoundError{store: store, version: version}
}

// IsStoreNotFound returns true if the error is a StoreNotFoundError.
func IsStoreNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *StoreNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrStoreNotFound)
}

// CacheError wraps a failing cache read or write.
type CacheError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("idbschema: cache %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap implements the errors.Wrapper interface.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// IsCacheError returns true if the error is a CacheError.
func IsCacheError(err error) bool {
	if err == nil {
		return false
	}
	var e *CacheError
	return errors.As(err, &e)
}
