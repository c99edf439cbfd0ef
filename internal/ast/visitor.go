package ast

// Walk traverses the tree in source order, calling fn for each node.
// If fn returns false, the children of that node are skipped.
//
// Example: collect every variable name referenced by a program.
//
//	names := map[string]bool{}
//	ast.Walk(prog, func(n ast.Node) bool {
//	    if id, ok := n.(*ast.Ident); ok {
//	        names[id.Name] = true
//	    }
//	    return true
//	})
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		walkStmts(n.Body, fn)

	case *WhileStmt:
		if n.Cond != nil {
			Walk(n.Cond, fn)
		}
		walkStmts(n.Body, fn)

	case *SignalStmt:
		walkStmts(n.Body, fn)

	case *NewStmt:
		walkExprs(fn, n.Name, n.Value)
	case *ComputeStmt:
		walkExprs(fn, n.Target, n.Value)
	case *CopyStmt:
		walkExprs(fn, n.Target, n.Value)
	case *ReadStmt:
		walkExprs(fn, n.Target)
	case *LoadStmt:
		walkExprs(fn, n.Target, n.Base, n.Index)
	case *StoreStmt:
		walkExprs(fn, n.Base, n.Index, n.Value)
	case *PrintStmt:
		walkExprs(fn, n.Args...)
	case *ForkStmt:
		walkExprs(fn, n.Target)

	case *BinaryExpr:
		walkExprs(fn, n.Left, n.Right)

	case *MutexStmt, *SigMaskStmt, *NothingStmt,
		*Ident, *NumLit, *StrLit, *SharedRef:
		// no children
	}
}

func walkStmts(stmts []Stmt, fn func(Node) bool) {
	for _, s := range stmts {
		Walk(s, fn)
	}
}

// walkExprs skips nil entries, including typed nil pointers left by
// partially parsed statements.
func walkExprs(fn func(Node) bool, exprs ...Expr) {
	for _, e := range exprs {
		if isNil(e) {
			continue
		}
		Walk(e, fn)
	}
}

func isNil(e Expr) bool {
	switch v := e.(type) {
	case nil:
		return true
	case *Ident:
		return v == nil
	case *BinaryExpr:
		return v == nil
	default:
		return false
	}
}
