package compiler

import (
	"fmt"
	"strings"

	"github.com/kolkov/minidbg/internal/types"
)

// Program is a compiled mini-language program, the template every
// process running this file is built from.
type Program struct {
	// File is the source file name.
	File string

	// Lines is the number of lines in the source file.
	Lines int

	// Tree is the main instruction tree; its root is a Program node.
	Tree *Tree

	// Handler is the SIGNAL block as its own tree rooted at a
	// SignalBlock node, or nil when the program has none.
	Handler *Tree

	// Symbols holds the variables, in definition order, followed by
	// the anonymous constants for literals.
	Symbols *types.SymbolTable

	// Vars is the number of named variables at the start of Symbols.
	Vars int
}

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	if p.Symbols.Len() > 0 {
		sb.WriteString("=== Symbols ===\n")
		for i := 0; i < p.Symbols.Len(); i++ {
			s := p.Symbols.At(i)
			switch {
			case s.Kind == types.KindStr:
				fmt.Fprintf(&sb, "  [%d] %s = %q\n", i, s.Name, s.Str)
			case s.Const:
				fmt.Fprintf(&sb, "  [%d] %s = %d\n", i, s.Name, s.Value)
			default:
				fmt.Fprintf(&sb, "  [%d] %s\n", i, s.Name)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "=== %s (%d lines) ===\n", p.File, p.Lines)
	sb.WriteString(p.Tree.Disassemble(p.Symbols))

	if p.Handler != nil {
		sb.WriteString("\n=== Handler ===\n")
		sb.WriteString(p.Handler.Disassemble(p.Symbols))
	}
	return sb.String()
}
