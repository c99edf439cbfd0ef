// Package semantic checks parsed mini-language programs before they are
// lowered to instruction trees.
//
// The analyzer performs:
//   - Name resolution: every variable is defined by a NEW on an earlier
//     line and never redefined
//   - Name validation: variable names are letters only
//   - Signal validation: SIGADD and SIGDEL name signals a handler may catch
//
// Programs are checked in source order, the order the compiler creates
// symbols in, so a handler block can only use variables defined above it.
package semantic

import (
	"fmt"
	"strings"

	"github.com/kolkov/minidbg/internal/token"
)

// Error represents a semantic analysis error with source location.
type Error struct {
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Warning represents a semantic warning (non-fatal issue).
type Warning struct {
	Pos     token.Position
	Message string
}

// String returns the warning as a formatted string.
func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList is a collection of semantic errors.
type ErrorList []*Error

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Position, format string, args ...any) {
	*el = append(*el, &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Err returns an error if the list is non-empty, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Error implements the error interface for ErrorList.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		var sb strings.Builder
		sb.WriteString(el[0].Error())
		for _, e := range el[1:] {
			sb.WriteByte('\n')
			sb.WriteString(e.Error())
		}
		return sb.String()
	}
}

// WarningList is a collection of semantic warnings.
type WarningList []*Warning

// Add appends a warning to the list.
func (wl *WarningList) Add(pos token.Position, format string, args ...any) {
	*wl = append(*wl, &Warning{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Common error messages as constants for consistency.
const (
	errUndefinedVar  = "undefined variable %q"
	errRedefinedVar  = "variable %q already defined at %s"
	errBadName       = "invalid variable name %q (letters only)"
	errInvalidSignal = "invalid signal %d in '%s'"
)

// Common warning messages.
const (
	warnUnusedVar    = "variable %q is defined but never used"
	warnEmptyLoop    = "body of 'WHILE @ %d' is empty; a true condition never leaves the loop"
	warnNoHandler    = "'%s @ %d' has no effect without a 'SIGNAL' block"
	warnLiteralZero  = "division by constant zero"
	warnEmptyHandler = "'SIGNAL' block is empty"
)
