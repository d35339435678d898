package transform

import (
	"errors"
	"fmt"
)

// ErrAlreadyRun is returned when Run is called on a transformer that has left
// the Idle state.
var ErrAlreadyRun = errors.New("transformer already ran")

// SchemaError reports a header that cannot serve the configured mappings.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("header field %q: %s", e.Field, e.Reason)
}

// RecordError reports a record that could not be transformed. Line is the
// 1-based input line the record starts on.
type RecordError struct {
	Line  int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record on line %d, field %q: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
