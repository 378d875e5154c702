package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference  = errors.New("invalid variable reference")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrInvalidTarget     = errors.New("invalid target variable")
	ErrInsufficientData  = errors.New("insufficient data")
)

// ReferenceError names the reference that could not be resolved. It
// unwraps to ErrInvalidReference or ErrUndefinedVariable.
type ReferenceError struct {
	Kind  error
	Input string
	Name  string
}

func (e *ReferenceError) Error() string {
	if e.Kind == ErrUndefinedVariable {
		return fmt.Sprintf("variable '%s' not found (input %s)", e.Name, e.Input)
	}
	return fmt.Sprintf("invalid variable reference '{{%s}}' (input %s)", e.Name, e.Input)
}

func (e *ReferenceError) Unwrap() error { return e.Kind }

// StepError annotates a failure with the step that caused it.
type StepError struct {
	Index    int
	StepName string
	Formula  string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, %s): %v", e.Index+1, e.StepName, e.Formula, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// InsufficientDataError carries the generator's explanation.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
