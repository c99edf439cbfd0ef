package ast

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// NewStmt creates a variable: NEW @ x : 5  or  NEW @ x : y
type NewStmt struct {
	BaseStmt
	Name  *Ident
	Value Expr // *Ident or *NumLit
}

// ComputeStmt assigns an expression: COMPUTE @ x : a + b
type ComputeStmt struct {
	BaseStmt
	Target *Ident
	Value  *BinaryExpr
}

// CopyStmt assigns a value: COPY @ x : y
type CopyStmt struct {
	BaseStmt
	Target *Ident
	Value  Expr // *Ident or *NumLit
}

// ReadStmt reads an integer from the console: READ @ x
type ReadStmt struct {
	BaseStmt
	Target *Ident
}

// -----------------------------------------------------------------------------
// Memory
// -----------------------------------------------------------------------------

// LoadStmt reads a memory cell: LOAD @ x : base$index
// Base is *SharedRef for the shared segment.
type LoadStmt struct {
	BaseStmt
	Target *Ident
	Base   Expr
	Index  Expr
}

// StoreStmt writes a memory cell: STORE @ base$index : value
// Base is *SharedRef for the shared segment.
type StoreStmt struct {
	BaseStmt
	Base  Expr
	Index Expr
	Value Expr
}

// -----------------------------------------------------------------------------
// Output and system
// -----------------------------------------------------------------------------

// PrintStmt writes its arguments with no separator: PRINT @ "x = ",x,"\n"
type PrintStmt struct {
	BaseStmt
	Args []Expr
}

// ForkStmt duplicates the running process: FORK @ pid
type ForkStmt struct {
	BaseStmt
	Target *Ident
}

// MutexStmt operates on the single shared mutex: MUTEX @ _ : _P
type MutexStmt struct {
	BaseStmt
	Acquire bool // true for _P, false for _V
}

// SigMaskStmt adds or removes a signal from the handler mask:
// SIGADD @ 10  or  SIGDEL @ 10
type SigMaskStmt struct {
	BaseStmt
	Add    bool
	Signal int
}

// NothingStmt is an explicit no-op line: NOTHING
type NothingStmt struct {
	BaseStmt
}

// -----------------------------------------------------------------------------
// Compound statements
// -----------------------------------------------------------------------------

// WhileStmt is a labelled loop:
//
//	WHILE @ 1 (i < 10) REPEAT
//	    ...
//	ENDWHILE @ 1
type WhileStmt struct {
	BaseStmt
	Label int
	Cond  *BinaryExpr
	Body  []Stmt
}

// SignalStmt is the handler block run when a masked signal arrives:
//
//	SIGNAL
//	    ...
//	ENDSIGNAL
type SignalStmt struct {
	BaseStmt
	Body []Stmt
}
