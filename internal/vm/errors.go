package vm

import (
	"errors"
	"fmt"
)

// ErrStalled is returned by Run when live processes remain but none is
// queued for election.
var ErrStalled = errors.New("no runnable process")

// RuntimeError is a fatal error of one simulated process. The process
// is terminated; the others keep running.
type RuntimeError struct {
	PID  int
	File string
	Line int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// InternalError reports a broken engine invariant, such as a cursor
// outside its node's children. It is raised with panic and is fatal to
// the whole run.
type InternalError struct {
	PID int
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("internal error in process %d: %s: %v", e.PID, e.Msg, e.Err)
	}
	return fmt.Sprintf("internal error in process %d: %s", e.PID, e.Msg)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func internalf(pid int, format string, args ...any) {
	panic(&InternalError{PID: pid, Msg: fmt.Sprintf(format, args...)})
}

// Runtime error messages.
const (
	errDivZero      = "division by zero"
	errRemZero      = "remainder by zero"
	errLoadBounds   = "memory address %d out of bounds in LOAD (limit %d)"
	errStoreBounds  = "memory address %d out of bounds in STORE (limit %d)"
	errBadSymbol    = "invalid symbol index %d in %s"
	errNoInput      = "end of input in READ"
	errOutput       = "write error in PRINT: %v"
	errBadMutexCode = "invalid mutex operation %d"
)
