// Package ast defines the syntax tree of mini-language programs.
//
// The tree mirrors the source: one statement per line, with WHILE and
// SIGNAL blocks owning the statements between their opening and closing
// lines. Names are kept as written; binding them to symbol-table slots
// is the job of the semantic and compiler packages.
//
// Node hierarchy:
//
//	Node (interface)
//	├── Expr (interface) - operands
//	│   ├── Ident, NumLit, StrLit - values
//	│   ├── SharedRef - the '_' shared memory marker
//	│   └── BinaryExpr - a op b (COMPUTE and WHILE conditions)
//	├── Stmt (interface) - one instruction line
//	│   ├── NewStmt, ComputeStmt, CopyStmt, ReadStmt - variables
//	│   ├── LoadStmt, StoreStmt - memory
//	│   ├── PrintStmt - output
//	│   ├── ForkStmt, MutexStmt, SigMaskStmt, NothingStmt - system
//	│   └── WhileStmt, SignalStmt - compound
//	└── Program - PROGRAM ... ENDPROGRAM
package ast

import "github.com/kolkov/minidbg/internal/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the first character belonging to this node.
	Pos() token.Position

	// End returns the position of the first character immediately after this node.
	End() token.Position
}

// Expr is the interface for operand nodes.
type Expr interface {
	Node
	exprNode() // marker method to prevent external implementations
}

// Stmt is the interface for instruction nodes.
type Stmt interface {
	Node
	stmtNode() // marker method to prevent external implementations
}

// BaseExpr provides common fields for all expression nodes.
type BaseExpr struct {
	StartPos token.Position // Position of first token
	EndPos   token.Position // Position after last token
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) End() token.Position { return b.EndPos }
func (b *BaseExpr) exprNode()           {}

// BaseStmt provides common fields for all statement nodes.
type BaseStmt struct {
	StartPos token.Position // Position of the keyword
	EndPos   token.Position // Position after the last token of the line
}

func (b *BaseStmt) Pos() token.Position { return b.StartPos }
func (b *BaseStmt) End() token.Position { return b.EndPos }
func (b *BaseStmt) stmtNode()           {}

// MakeBaseExpr creates a BaseExpr with the given positions.
func MakeBaseExpr(start, end token.Position) BaseExpr {
	return BaseExpr{StartPos: start, EndPos: end}
}

// MakeBaseStmt creates a BaseStmt with the given positions.
func MakeBaseStmt(start, end token.Position) BaseStmt {
	return BaseStmt{StartPos: start, EndPos: end}
}

// IsValue returns true if e can be read as an integer operand
// (a variable or a number literal).
func IsValue(e Expr) bool {
	switch e.(type) {
	case *Ident, *NumLit:
		return true
	default:
		return false
	}
}
