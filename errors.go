package minidbg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolkov/minidbg/internal/vm"
)

// ParseError represents a syntax or semantic error in a program source.
type ParseError struct {
	File    string // Source file name
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// ParseErrors holds every error found in one source.
type ParseErrors []*ParseError

func (el ParseErrors) Error() string {
	lines := make([]string, len(el))
	for i, e := range el {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// LoadError reports a program file that could not be loaded. The
// other files still run.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RuntimeError is a fatal error of one simulated process, such as a
// division by zero. It terminates that process only.
type RuntimeError = vm.RuntimeError

// InternalError reports a broken engine invariant. It aborts the run.
type InternalError = vm.InternalError

var (
	// ErrNoPrograms is returned when no program could be loaded.
	ErrNoPrograms = errors.New("no program to run")

	// ErrStalled is returned by Run when live processes remain but none
	// can be scheduled.
	ErrStalled = vm.ErrStalled
)
