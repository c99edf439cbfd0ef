// Package compiler lowers a checked AST into the instruction tree the
// virtual machine steps through, and allocates the process symbol table.
package compiler

// Kind identifies the instruction a Node carries.
type Kind uint8

const (
	// Leaf instructions
	Create Kind = iota // NEW @ x : v
	Compute // COMPUTE @ x : a op b
	Copy    // COPY @ x : v
	Load    // LOAD @ x : base$i
	Store   // STORE @ base$i : v
	Read    // READ @ x
	Print   // PRINT @ a,b,...
	Fork    // FORK @ x
	MutexOp // MUTEX @ _ : _P|_V
	SigAdd  // SIGADD @ n
	SigDel  // SIGDEL @ n
	Empty   // NOTHING

	// Compound instructions
	WhileRepeat // WHILE @ n (a op b) REPEAT ... ENDWHILE @ n
	ProgramNode // PROGRAM ... ENDPROGRAM
	SignalBlock // SIGNAL ... ENDSIGNAL
)

var kindNames = [...]string{
	Create:      "NEW",
	Compute:     "COMPUTE",
	Copy:        "COPY",
	Load:        "LOAD",
	Store:       "STORE",
	Read:        "READ",
	Print:       "PRINT",
	Fork:        "FORK",
	MutexOp:     "MUTEX",
	SigAdd:      "SIGADD",
	SigDel:      "SIGDEL",
	Empty:       "NOTHING",
	WhileRepeat: "WHILE",
	ProgramNode: "PROGRAM",
	SignalBlock: "SIGNAL",
}

// String returns the source keyword of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsCompound reports whether nodes of this kind own children.
func (k Kind) IsCompound() bool {
	return k == WhileRepeat || k == ProgramNode || k == SignalBlock
}

// Op is the operator of a Compute, Copy, Load, Store or WhileRepeat node.
type Op uint8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpGt
	OpLt
	OpGe
	OpLe
	OpEq
	OpNe
	OpAssign // COPY and NEW
	OpIndex  // LOAD and STORE addressing
)

var opNames = [...]string{
	OpNone:   "",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpRem:    "%",
	OpGt:     ">",
	OpLt:     "<",
	OpGe:     ">=",
	OpLe:     "<=",
	OpEq:     "==",
	OpNe:     "!=",
	OpAssign: ":",
	OpIndex:  "$",
}

// String returns the operator as written in source.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

// Reserved Target values.
const (
	NoTarget = -1 // instruction has no destination
	Shared   = -2 // shared memory segment, as a LOAD or STORE base
	Mutex    = -3 // the system mutex
)

// MutexOp operands.
const (
	Acquire = 1 // _P
	Release = 2 // _V
)

// CondState caches the outcome of a compound node's condition between steps.
type CondState uint8

const (
	Unevaluated CondState = iota
	True
	False
)

// String returns a human-readable name for the state.
func (c CondState) String() string {
	switch c {
	case Unevaluated:
		return "unevaluated"
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "invalid"
	}
}
