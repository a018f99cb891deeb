package manager

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrNilManager indicates a nil manager was provided.
	ErrNilManager = errors.New("manager cannot be nil")
	// ErrEmptyPluginName indicates a plugin name was empty.
	ErrEmptyPluginName = errors.New("plugin name cannot be empty")
	// ErrEmptyInstanceName indicates an instance name was empty.
	ErrEmptyInstanceName = errors.New("instance name cannot be empty")
	// ErrInvalidInstanceName indicates an instance name with invalid characters.
	ErrInvalidInstanceName = errors.New("instance name must start with a letter and contain only letters, digits, hyphens, and underscores")
)

// ManagerExistsError indicates a manager is already registered.
//
//nolint:revive // Name kept for symmetry with UnknownPluginError
type ManagerExistsError struct {
	Name PluginName
}

func (e *ManagerExistsError) Error() string {
	return fmt.Sprintf("plugin %q already registered", e.Name)
}

// UnknownPluginError indicates a plugin name that no registered manager
// handles, e.g. from a --plugin filter.
type UnknownPluginError struct {
	Name PluginName
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("unknown plugin %q", e.Name)
}

// InstanceConfigError indicates an instance configuration that failed to
// parse or validate. Key identifies the exact instance.
type InstanceConfigError struct {
	Key InstanceKey
	Err error
}

func (e *InstanceConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Key, e.Err)
}

func (e *InstanceConfigError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError indicates a declared target application version
// outside the range a manager supports.
type UnsupportedVersionError struct {
	Key     InstanceKey
	Version string
	Min     string
	Max     string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s declares version %s, supported range is %s to %s",
		e.Key, e.Version, e.Min, e.Max)
}

// IsUnknownPlugin returns true if the error indicates an unknown plugin name.
func IsUnknownPlugin(err error) bool {
	var unknownErr *UnknownPluginError
	return errors.As(err, &unknownErr)
}
