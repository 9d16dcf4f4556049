package plugin

import (
	"errors"
	"fmt"
)

// Validation and loading errors.
var (
	// ErrMissingName indicates the manifest has no name.
	ErrMissingName = errors.New("manifest: name is required")

	// ErrInvalidName indicates the plugin name is not a valid
	// lowercase identifier.
	ErrInvalidName = errors.New("manifest: name must be a lowercase identifier")

	// ErrMissingVersion indicates the manifest has no version.
	ErrMissingVersion = errors.New("manifest: version is required")

	// ErrInvalidVersion indicates the version is not dotted-numeric.
	ErrInvalidVersion = errors.New("manifest: version must be dotted numbers")

	// ErrInvalidSetup indicates the setup entry is not a .lua file.
	ErrInvalidSetup = errors.New("manifest: setup must be a .lua file")

	// ErrInvalidConfigType indicates a config variable declares an
	// unknown type.
	ErrInvalidConfigType = errors.New("manifest: invalid config variable type")

	// ErrDuplicatePlugin indicates two discovered plugins share a name.
	ErrDuplicatePlugin = errors.New("duplicate plugin name")
)

// SetupError wraps a failure inside a plugin's Lua setup script.
type SetupError struct {
	// Plugin is the plugin name.
	Plugin string
	// Script is the setup script path.
	Script string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("plugin %s: setup script %s: %v", e.Plugin, e.Script, e.Err)
}

// Unwrap returns the underlying error.
func (e *SetupError) Unwrap() error {
	return e.Err
}
