package anonymizer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is wrapped by every ParseError.
	ErrInvalidAddress = errors.New("invalid IPv4 address")

	// ErrInitialization is wrapped by every InitializationError.
	ErrInitialization = errors.New("scrambler initialization failed")
)

// ParseError reports address text that is not a canonical dotted quad.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", ErrInvalidAddress, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrInvalidAddress, e.Value)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidAddress, e.Err}
	}
	return []error{ErrInvalidAddress}
}

// InitializationError reports a key file that cannot be used or a non-zero
// status from the primitive's init entry point. Status is zero when the
// primitive was never called.
type InitializationError struct {
	KeyFile string
	Status  int32
	Err     error
}

func (e *InitializationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s (key file %s): %v", ErrInitialization, e.KeyFile, e.Err)
	default:
		return fmt.Sprintf("%s (key file %s): status %d", ErrInitialization, e.KeyFile, e.Status)
	}
}

func (e *InitializationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInitialization, e.Err}
	}
	return []error{ErrInitialization}
}
