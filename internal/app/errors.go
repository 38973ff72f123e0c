// Package app wires the editor host together: buffers, configuration,
// logging, and the scripting engine.
package app

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrNoBuffer indicates no buffer is currently active.
	ErrNoBuffer = errors.New("no active buffer")

	// ErrUnknownBuffer indicates the named buffer is not open.
	ErrUnknownBuffer = errors.New("unknown buffer")

	// ErrNoFilePath indicates the buffer has no file path to save to.
	ErrNoFilePath = errors.New("buffer has no file path")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// OperationError represents an error during an editor operation.
type OperationError struct {
	Op     string // operation name ("open", "save", "close")
	Target string // file path or buffer name
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
