package minidbg

import (
	"errors"
	"os"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/parser"
	"github.com/kolkov/minidbg/internal/semantic"
)

// Version is the minidbg version string.
const Version = "0.1.0"

// Program is a compiled mini-language program. Every process running
// it gets its own copy of the instruction tree and symbols, so one
// Program may be spawned any number of times.
type Program struct {
	compiled *compiler.Program
	source   []byte
	warnings []string
}

// Compile parses, checks and compiles the source of the file name.
// Syntax and semantic errors are returned as ParseErrors.
//
// Example:
//
//	prog, err := minidbg.Compile("count.prog", []byte(`PROGRAM
//	NEW @ i : 0
//	PRINT @ i,"\n"
//	ENDPROGRAM
//	`))
func Compile(name string, src []byte) (*Program, error) {
	astProg, err := parser.ParseFile(name, src)
	if err != nil {
		return nil, convertParseError(name, err)
	}

	resolved, err := semantic.Analyze(astProg)
	if err != nil {
		return nil, convertParseError(name, err)
	}

	compiled, err := compiler.Compile(astProg, resolved)
	if err != nil {
		return nil, &ParseError{File: name, Message: err.Error()}
	}

	p := &Program{compiled: compiled, source: src}
	for _, w := range resolved.Warnings {
		p.warnings = append(p.warnings, w.String())
	}
	return p, nil
}

// MustCompile is like Compile but panics if the program cannot be compiled.
func MustCompile(name string, src string) *Program {
	prog, err := Compile(name, []byte(src))
	if err != nil {
		panic(err)
	}
	return prog
}

// Load reads and compiles a program file. Errors are *LoadError.
func Load(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	prog, err := Compile(path, src)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	return prog, nil
}

// LoadFiles loads every path, skipping the files that fail. It returns
// the programs that loaded and one *LoadError per file that did not.
func LoadFiles(paths []string) ([]*Program, []error) {
	var progs []*Program
	var errs []error
	for _, path := range paths {
		prog, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		progs = append(progs, prog)
	}
	return progs, errs
}

// Name returns the source file name.
func (p *Program) Name() string {
	return p.compiled.File
}

// Source returns the program source.
func (p *Program) Source() []byte {
	return p.source
}

// Warnings returns the non-fatal diagnostics found while compiling.
func (p *Program) Warnings() []string {
	return p.warnings
}

// Disassemble returns a listing of the symbols and instruction trees.
func (p *Program) Disassemble() string {
	return p.compiled.Disassemble()
}

func convertParseError(name string, err error) error {
	var out ParseErrors
	var pl parser.ErrorList
	var pe *parser.ParseError
	var sl semantic.ErrorList
	var se *semantic.Error
	switch {
	case errors.As(err, &pl):
		for _, e := range pl {
			out = append(out, fromSyntaxError(name, e))
		}
	case errors.As(err, &pe):
		out = append(out, fromSyntaxError(name, pe))
	case errors.As(err, &sl):
		for _, e := range sl {
			out = append(out, &ParseError{File: name, Line: e.Pos.Line, Column: e.Pos.Column, Message: e.Message})
		}
	case errors.As(err, &se):
		out = append(out, &ParseError{File: name, Line: se.Pos.Line, Column: se.Pos.Column, Message: se.Message})
	default:
		out = append(out, &ParseError{File: name, Message: err.Error()})
	}
	return out
}

func fromSyntaxError(name string, e *parser.ParseError) *ParseError {
	msg := e.Message
	if e.Instr != "" {
		msg = "'" + e.Instr + "': " + msg
	}
	return &ParseError{File: name, Line: e.Pos.Line, Column: e.Pos.Column, Message: msg}
}
