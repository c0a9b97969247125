package domain

import (
	"errors"
	"fmt"

	m "gest.dev/pkg/gest/internal/model"
)

var (
	// ErrScriptExit is the interrupt value raised by the script-facing exit()
	// function. It ends execution without being reported as an error.
	ErrScriptExit = errors.New("script exit")
	// ErrTestTimeout is the interrupt value raised when a test exceeds its timeout.
	ErrTestTimeout = errors.New("test timed out")
)

// FunctionCallError wraps an error raised while calling a script function.
type FunctionCallError struct {
	Name     string
	Source   string
	Position m.Position
	Err      error
}

func (e *FunctionCallError) Error() string {
	return fmt.Sprintf("error in function call %s: %v", e.Name, e.Err)
}

func (e *FunctionCallError) Unwrap() error {
	return e.Err
}

// ModuleError wraps an error raised while compiling or evaluating a module.
type ModuleError struct {
	Name     string
	Source   string
	Position m.Position
	Err      error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("error in module %s: %v", e.Name, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError is returned when an imported module cannot be read.
type ModuleNotFoundError struct {
	ImportPath string
	Resolved   m.Path
	Source     string
	Position   m.Position
	Err        error
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s (%s)", e.ImportPath, e.Resolved)
}

func (e *ModuleNotFoundError) Unwrap() error {
	return e.Err
}

// OutputTypeError is returned when a test function returns a value.
type OutputTypeError struct {
	Got string
}

func (e *OutputTypeError) Error() string {
	return fmt.Sprintf("test function returned %s, expected nothing", e.Got)
}
