package filter

import (
	"fmt"
)

// Error types for guard operations
type (
	// CompilationError indicates a guard expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a guard could not be evaluated for a port
	EvaluationError struct {
		Expression string
		Port       int
		Reason     string
		Err        error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error in '%s' for port %d: %s", e.Expression, e.Port, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
