// Package parser provides the line-oriented parser of the mini-language.
package parser

import (
	"fmt"

	"github.com/kolkov/minidbg/internal/token"
)

// ParseError is a syntax error on one source line. Instr is the keyword
// of the instruction the line holds, when the error occurred after it
// was read.
type ParseError struct {
	Pos     token.Position
	Instr   string
	Message string
}

// Error returns "file:line:col: 'KEYWORD': message", or the same
// without the keyword.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Instr != "" {
		msg = "'" + e.Instr + "': " + msg
	}
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

// ErrorList holds the errors of one file, at most one per line since the
// parser resumes on the line after an error.
type ErrorList []*ParseError

// Error returns the first error and the number of others.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
	}
}

// Err returns el as an error, or nil if it is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func errorf(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// missingError reports that want is missing where got was found.
func missingError(pos token.Position, want, got string) *ParseError {
	return errorf(pos, "missing %s, found %s", want, got)
}
