package schema

import (
	"errors"
	"fmt"
)

// Errors returned by schema operations.
var (
	// ErrUnknownKey indicates the key does not resolve to any registered
	// field. Ambiguous bare names resolve to this error as well.
	ErrUnknownKey = errors.New("unknown configuration key")

	// ErrDuplicateKey indicates an attempt to register a field under a
	// key that is already taken. Surfaced at startup, never at lookup.
	ErrDuplicateKey = errors.New("configuration key already registered")

	// ErrBadValue indicates a value could not be coerced to or from the
	// declared field kind.
	ErrBadValue = errors.New("invalid configuration value")
)

// ValueError describes a failed coercion between the string and typed
// forms of a configuration value.
type ValueError struct {
	// Key is the field's fully-qualified key.
	Key string
	// Kind is the field's declared kind.
	Kind Kind
	// Raw is the offending input.
	Raw string
	// Reason describes what went wrong.
	Reason string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s (%s): %s", e.Raw, e.Key, e.Kind, e.Reason)
}

// Is reports a match against ErrBadValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrBadValue
}
