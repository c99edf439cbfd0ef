package ast

import "github.com/kolkov/minidbg/internal/token"

// Ident is a variable reference. Names are made of letters only.
type Ident struct {
	BaseExpr
	Name string
}

// NumLit is a non-negative integer literal.
type NumLit struct {
	BaseExpr
	Value int
	Raw   string // Text as written
}

// StrLit is a string literal with escapes already decoded.
type StrLit struct {
	BaseExpr
	Value string
}

// SharedRef is the '_' marker used as a LOAD or STORE base to address
// the shared memory segment instead of the private heap.
type SharedRef struct {
	BaseExpr
}

// BinaryExpr is "Left Op Right". Op is one of the arithmetic or
// comparison tokens.
type BinaryExpr struct {
	BaseExpr
	Left  Expr
	Op    token.Token
	Right Expr

	// Implicit is set for a single-operand WHILE condition, which the
	// parser rewrites to "operand != 0".
	Implicit bool
}
