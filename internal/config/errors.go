package config

import (
	"errors"
	"fmt"

	"github.com/rezine-project/rezine/internal/config/schema"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownKey indicates the key is not present in the schema
	// registry. Unknown keys are never silently defaulted.
	ErrUnknownKey = schema.ErrUnknownKey

	// ErrBadValue indicates a value could not be coerced to the key's
	// declared kind.
	ErrBadValue = schema.ErrBadValue

	// ErrAlreadyCommitted indicates Commit was called on a transaction
	// that already committed successfully.
	ErrAlreadyCommitted = errors.New("transaction already committed")

	// ErrTypeMismatch indicates a typed accessor was used on a key of a
	// different kind.
	ErrTypeMismatch = errors.New("type mismatch")
)

// TransactionError is returned when a transaction could not write the
// changes to the configuration file. The file and in-memory state are
// left untouched.
type TransactionError struct {
	// Filename is the backing file path.
	Filename string
	// Err is the underlying I/O error.
	Err error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("could not save configuration file %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// TypeError is returned by the typed accessors when the stored value has
// a different kind than requested.
type TypeError struct {
	// Key is the configuration key.
	Key string
	// Expected is the requested type name.
	Expected string
	// Actual is the actual type name.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error for %s: expected %s, got %s", e.Key, e.Expected, e.Actual)
}

// Is reports a match against ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
