package ast

import "github.com/kolkov/minidbg/internal/token"

// Program is the root of a parsed source file.
type Program struct {
	BaseStmt
	File  string // Source file name
	Lines int    // Number of lines in the source
	Body  []Stmt // Statements between PROGRAM and ENDPROGRAM
}

// Handler returns the program's SIGNAL block, or nil if it has none.
// Only top-level statements are searched: the parser rejects nested ones.
func (p *Program) Handler() *SignalStmt {
	for _, s := range p.Body {
		if sig, ok := s.(*SignalStmt); ok {
			return sig
		}
	}
	return nil
}

// Line returns the source line of a node.
func Line(n Node) int {
	return n.Pos().Line
}

// Keyword returns the source keyword of a statement.
func Keyword(s Stmt) token.Token {
	switch n := s.(type) {
	case *NewStmt:
		return token.NEW
	case *ComputeStmt:
		return token.COMPUTE
	case *CopyStmt:
		return token.COPY
	case *ReadStmt:
		return token.READ
	case *LoadStmt:
		return token.LOAD
	case *StoreStmt:
		return token.STORE
	case *PrintStmt:
		return token.PRINT
	case *ForkStmt:
		return token.FORK
	case *MutexStmt:
		return token.MUTEX
	case *SigMaskStmt:
		if n.Add {
			return token.SIGADD
		}
		return token.SIGDEL
	case *NothingStmt:
		return token.NOTHING
	case *WhileStmt:
		return token.WHILE
	case *SignalStmt:
		return token.SIGNAL
	default:
		return token.ILLEGAL
	}
}
