package population

import (
	"errors"
	"fmt"
)

// ErrFieldType is returned when a reserved field receives a value of the wrong type.
var ErrFieldType = errors.New("wrong type for reserved field")

// FieldError describes a rejected reserved-field value.
type FieldError struct {
	Field string
	Want  string
	Got   any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: want %s, got %T (%v)", e.Field, e.Want, e.Got, e.Got)
}

func (e *FieldError) Unwrap() error {
	return ErrFieldType
}

// StepError reports the individual at which a batch update aborted.
// Individuals before Index keep the updates they received.
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("population: update of individual %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
