package semantic

import (
	"github.com/kolkov/minidbg/internal/ast"
	"github.com/kolkov/minidbg/internal/runtime"
)

// Checker performs additional validation after resolution.
type Checker struct {
	result     *ResolveResult
	errors     ErrorList
	hasHandler bool
}

// Check validates signal masks of a resolved program.
// Warnings are appended to result.
func Check(prog *ast.Program, result *ResolveResult) []error {
	c := &Checker{
		result:     result,
		hasHandler: prog.Handler() != nil,
	}

	ast.Walk(prog, func(n ast.Node) bool {
		if s, ok := n.(*ast.SigMaskStmt); ok {
			c.checkSigMask(s)
		}
		return true
	})

	if len(c.errors) == 0 {
		return nil
	}

	errs := make([]error, len(c.errors))
	for i, e := range c.errors {
		errs[i] = e
	}
	return errs
}

func (c *Checker) checkSigMask(s *ast.SigMaskStmt) {
	kw := ast.Keyword(s).String()
	if !runtime.ValidMaskSignal(s.Signal) {
		c.errors.Add(s.Pos(), errInvalidSignal, s.Signal, kw)
		return
	}
	if !c.hasHandler && s.Add && c.result != nil {
		c.result.Warnings.Add(s.Pos(), warnNoHandler, kw, s.Signal)
	}
}

// Analyze runs Resolve and Check and merges their errors.
func Analyze(prog *ast.Program) (*ResolveResult, error) {
	result, err := Resolve(prog)
	if err != nil {
		return result, err
	}
	if errs := Check(prog, result); len(errs) > 0 {
		var el ErrorList
		for _, e := range errs {
			if se, ok := e.(*Error); ok {
				el = append(el, se)
			}
		}
		return result, el
	}
	return result, nil
}
