package compiler

import (
	"fmt"
	"strconv"

	"github.com/kolkov/minidbg/internal/ast"
	"github.com/kolkov/minidbg/internal/semantic"
	"github.com/kolkov/minidbg/internal/token"
	"github.com/kolkov/minidbg/internal/types"
)

// CompileError represents a compilation error.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// Compile transforms a resolved AST into an instruction tree.
func Compile(prog *ast.Program, resolved *semantic.ResolveResult) (compiledProg *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok {
				err = ce
			} else {
				panic(r) // Re-panic for non-compile errors
			}
		}
	}()

	c := &compiler{
		file: prog.File,
		syms: types.NewSymbolTable(),
	}

	// Variables take the first slots, in definition order.
	for _, sym := range resolved.Symbols.Symbols() {
		c.syms.Define(sym.Name, 0)
	}

	p := &Program{
		File:    prog.File,
		Lines:   prog.Lines,
		Symbols: c.syms,
		Vars:    resolved.Symbols.Len(),
	}

	p.Tree = &Tree{}
	c.tree = p.Tree
	p.Tree.Root = c.compileBlock(ProgramNode, -1, ast.Line(prog), prog.Body)

	if h := prog.Handler(); h != nil {
		p.Handler = &Tree{}
		c.tree = p.Handler
		p.Handler.Root = c.compileBlock(SignalBlock, -1, ast.Line(h), h.Body)
	}
	return p, nil
}

type compiler struct {
	file string
	syms *types.SymbolTable
	tree *Tree // tree being built
}

func (c *compiler) errorf(format string, args ...any) {
	panic(&CompileError{Message: c.file + ": " + fmt.Sprintf(format, args...)})
}

// compileBlock adds a compound node and its body.
func (c *compiler) compileBlock(kind Kind, parent, line int, body []ast.Stmt) int {
	idx := c.tree.add(c.node(kind, parent, line))
	children := make([]int, 0, len(body))
	for _, s := range body {
		children = append(children, c.compileStmt(s, idx))
	}
	c.tree.Nodes[idx].Children = children
	return idx
}

func (c *compiler) node(kind Kind, parent, line int) Node {
	return Node{
		Kind:   kind,
		Target: NoTarget,
		Cursor: -1,
		Parent: parent,
		File:   c.file,
		Line:   line,
	}
}

func (c *compiler) compileStmt(stmt ast.Stmt, parent int) int {
	line := ast.Line(stmt)

	switch s := stmt.(type) {
	case *ast.WhileStmt:
		idx := c.compileBlock(WhileRepeat, parent, line, s.Body)
		n := &c.tree.Nodes[idx]
		n.Op, n.Operands = c.binary(s.Cond)
		return idx

	case *ast.SignalStmt:
		// In the main flow the block is a no-op; its body lives in the
		// handler tree.
		return c.tree.add(c.node(SignalBlock, parent, line))
	}

	n := c.node(Empty, parent, line)
	switch s := stmt.(type) {
	case *ast.NewStmt:
		n.Kind, n.Op = Create, OpAssign
		n.Target = c.variable(s.Name)
		n.Operands = []int{c.value(s.Value)}

	case *ast.ComputeStmt:
		n.Kind = Compute
		n.Target = c.variable(s.Target)
		n.Op, n.Operands = c.binary(s.Value)

	case *ast.CopyStmt:
		n.Kind, n.Op = Copy, OpAssign
		n.Target = c.variable(s.Target)
		n.Operands = []int{c.value(s.Value)}

	case *ast.ReadStmt:
		n.Kind = Read
		n.Target = c.variable(s.Target)

	case *ast.LoadStmt:
		n.Kind, n.Op = Load, OpIndex
		n.Target = c.variable(s.Target)
		n.Operands = []int{c.value(s.Base), c.value(s.Index)}

	case *ast.StoreStmt:
		n.Kind, n.Op = Store, OpIndex
		n.Target = c.value(s.Base)
		n.Operands = []int{c.value(s.Index), c.value(s.Value)}

	case *ast.PrintStmt:
		n.Kind = Print
		n.Operands = make([]int, len(s.Args))
		for i, a := range s.Args {
			n.Operands[i] = c.value(a)
		}

	case *ast.ForkStmt:
		n.Kind = Fork
		n.Target = c.variable(s.Target)

	case *ast.MutexStmt:
		n.Kind = MutexOp
		n.Target = Mutex
		if s.Acquire {
			n.Operands = []int{Acquire}
		} else {
			n.Operands = []int{Release}
		}

	case *ast.SigMaskStmt:
		n.Kind = SigDel
		if s.Add {
			n.Kind = SigAdd
		}
		n.Target = s.Signal

	case *ast.NothingStmt:
		// Empty

	default:
		c.errorf("line %d: unexpected statement %T", line, stmt)
	}
	return c.tree.add(n)
}

func (c *compiler) binary(e *ast.BinaryExpr) (Op, []int) {
	if e == nil {
		c.errorf("missing expression")
	}
	return tokenToOp(e.Op), []int{c.value(e.Left), c.value(e.Right)}
}

// value returns the symbol slot of an operand, allocating constants
// for literals.
func (c *compiler) value(e ast.Expr) int {
	switch v := e.(type) {
	case *ast.Ident:
		return c.variable(v)
	case *ast.NumLit:
		key := strconv.Itoa(v.Value)
		return c.syms.Literal(key, types.KindInt, v.Value, "")
	case *ast.StrLit:
		key := strconv.Quote(v.Value)
		return c.syms.Literal(key, types.KindStr, 0, v.Value)
	case *ast.SharedRef:
		return Shared
	default:
		c.errorf("unexpected operand %T", e)
		return NoTarget
	}
}

func (c *compiler) variable(id *ast.Ident) int {
	if id == nil {
		c.errorf("missing variable")
	}
	idx, ok := c.syms.Lookup(id.Name)
	if !ok || c.syms.At(idx).Const {
		c.errorf("%s: unresolved variable %q", id.Pos().Where(), id.Name)
	}
	return idx
}

func tokenToOp(tok token.Token) Op {
	switch tok {
	case token.ADD:
		return OpAdd
	case token.SUB:
		return OpSub
	case token.MUL:
		return OpMul
	case token.DIV:
		return OpDiv
	case token.MOD:
		return OpRem
	case token.GREATER:
		return OpGt
	case token.LESS:
		return OpLt
	case token.GTE:
		return OpGe
	case token.LTE:
		return OpLe
	case token.EQUALS:
		return OpEq
	case token.NOT_EQUALS:
		return OpNe
	default:
		panic(&CompileError{Message: "unexpected operator " + tok.String()})
	}
}
