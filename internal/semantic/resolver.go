package semantic

import (
	"github.com/kolkov/minidbg/internal/ast"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/token"
)

// ResolveResult contains the results of semantic analysis.
type ResolveResult struct {
	// Variables in definition order
	Symbols *SymbolTable

	// Errors encountered during resolution
	Errors ErrorList

	// Warnings (non-fatal issues)
	Warnings WarningList
}

// Resolver binds every variable reference to its defining NEW.
type Resolver struct {
	result *ResolveResult
}

// Resolve performs name resolution on prog.
// Returns the resolution result; the error is non-nil when any name
// is undefined, redefined or malformed.
func Resolve(prog *ast.Program) (*ResolveResult, error) {
	r := &Resolver{
		result: &ResolveResult{Symbols: NewSymbolTable()},
	}

	r.resolveStmts(prog.Body)
	r.finalize()

	if err := r.result.Errors.Err(); err != nil {
		return r.result, err
	}
	return r.result, nil
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.NewStmt:
		// The initial value is resolved first: "NEW @ x : x" is undefined.
		r.use(n.Value)
		r.define(n.Name)

	case *ast.ComputeStmt:
		r.use(n.Value)
		r.assign(n.Target)

	case *ast.CopyStmt:
		r.use(n.Value)
		r.assign(n.Target)

	case *ast.ReadStmt:
		r.assign(n.Target)

	case *ast.LoadStmt:
		r.use(n.Base)
		r.use(n.Index)
		r.assign(n.Target)

	case *ast.StoreStmt:
		r.use(n.Base)
		r.use(n.Index)
		r.use(n.Value)

	case *ast.PrintStmt:
		for _, a := range n.Args {
			r.use(a)
		}

	case *ast.ForkStmt:
		r.assign(n.Target)

	case *ast.WhileStmt:
		r.use(n.Cond)
		if len(n.Body) == 0 {
			r.result.Warnings.Add(n.Pos(), warnEmptyLoop, n.Label)
		}
		r.resolveStmts(n.Body)

	case *ast.SignalStmt:
		if len(n.Body) == 0 {
			r.result.Warnings.Add(n.Pos(), warnEmptyHandler)
		}
		r.resolveStmts(n.Body)

	case *ast.MutexStmt, *ast.SigMaskStmt, *ast.NothingStmt:
		// no names
	}
}

func (r *Resolver) define(id *ast.Ident) {
	if id == nil || !r.validName(id) {
		return
	}
	if prev := r.result.Symbols.Lookup(id.Name); prev != nil {
		r.result.Errors.Add(id.Pos(), errRedefinedVar, id.Name, prev.Pos.Where())
		return
	}
	r.result.Symbols.Define(id.Name, id.Pos())
}

// use marks every identifier in e as read.
func (r *Resolver) use(e ast.Expr) {
	if e == nil {
		return
	}
	ast.Walk(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			if sym := r.lookup(id); sym != nil {
				sym.Used = true
			}
		}
		if b, ok := n.(*ast.BinaryExpr); ok && (b.Op == token.DIV || b.Op == token.MOD) {
			if lit, isLit := b.Right.(*ast.NumLit); isLit && lit.Value == 0 {
				r.result.Warnings.Add(b.Pos(), warnLiteralZero)
			}
		}
		return true
	})
}

// assign marks id as written.
func (r *Resolver) assign(id *ast.Ident) {
	if id == nil {
		return
	}
	if sym := r.lookup(id); sym != nil {
		sym.Assigned = true
	}
}

func (r *Resolver) lookup(id *ast.Ident) *Symbol {
	if !r.validName(id) {
		return nil
	}
	sym := r.result.Symbols.Lookup(id.Name)
	if sym == nil {
		r.result.Errors.Add(id.Pos(), errUndefinedVar, id.Name)
	}
	return sym
}

func (r *Resolver) validName(id *ast.Ident) bool {
	if runtime.IsSymbolName(id.Name) {
		return true
	}
	r.result.Errors.Add(id.Pos(), errBadName, id.Name)
	return false
}

// finalize reports variables that are never read.
func (r *Resolver) finalize() {
	for _, sym := range r.result.Symbols.Symbols() {
		if !sym.Used && !sym.Assigned {
			r.result.Warnings.Add(sym.Pos, warnUnusedVar, sym.Name)
		}
	}
}
