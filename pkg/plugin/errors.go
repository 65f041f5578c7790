package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError
	ErrConfiguration = errors.New("invalid plugin configuration")

	// ErrTransform matches every *TransformError
	ErrTransform = errors.New("transform failed")
)

// ConfigurationError reports an option that failed validation in New
type ConfigurationError struct {
	// Option names the offending option, e.g. "factory" or "include"
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: option %s: %v", Name, e.Option, e.Err)
}

// Unwrap returns the underlying cause
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfiguration
func (*ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// TransformError reports the failure of a single file. Other files are not affected.
type TransformError struct {
	// ID is the identifier of the file being transformed
	ID  string
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: failed to transform %s: %v", Name, e.ID, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransformError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransform
func (*TransformError) Is(target error) bool { return target == ErrTransform }

func configError(option string, err error) error {
	return &ConfigurationError{Option: option, Err: err}
}
