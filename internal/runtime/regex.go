// Package runtime provides the emulator's runtime support: console I/O
// for READ and PRINT, input validation patterns and signal naming.
package runtime

import (
	"strings"

	"github.com/coregx/coregex"
)

// Regex wraps coregex for anchored input validation.
type Regex struct {
	pattern string
	re      *coregex.Regexp
}

// Compile creates a new Regex from pattern.
// Matching is leftmost-longest, so anchored patterns see the whole input.
func Compile(pattern string) (*Regex, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return &Regex{pattern: pattern, re: re}, nil
}

// MustCompile creates a Regex, panicking on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Pattern returns the original pattern string.
func (r *Regex) Pattern() string {
	return r.pattern
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// FindStringIndex returns the start and end of the first match, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.re.FindStringIndex(s)
}

// Patterns used across the emulator.
var (
	// SymbolName matches a variable name: letters only.
	SymbolName = MustCompile(`^[A-Za-z]+$`)

	// Integer matches a decimal integer with an optional sign, as typed
	// at a READ prompt or as a debugger argument.
	Integer = MustCompile(`^[+-]?[0-9]+$`)
)

// IsSymbolName reports whether s is a valid variable name.
func IsSymbolName(s string) bool {
	return SymbolName.MatchString(s)
}

// IsInteger reports whether s, trimmed of surrounding blanks, is an
// integer literal.
func IsInteger(s string) bool {
	return Integer.MatchString(strings.TrimSpace(s))
}
