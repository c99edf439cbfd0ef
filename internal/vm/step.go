package vm

import (
	"github.com/kolkov/minidbg/internal/compiler"
)

// ResultKind tells the caller of a step what happened at the node.
type ResultKind uint8

const (
	// Continuing: the node has more work; its parent must not advance.
	Continuing ResultKind = iota
	// Completed: the node is done; its parent advances its cursor.
	Completed
	// CompletedWithFork: like Completed, and the step forked. The
	// child's copy of the node must advance in lockstep.
	CompletedWithFork
)

func (k ResultKind) String() string {
	switch k {
	case Continuing:
		return "continuing"
	case Completed:
		return "completed"
	case CompletedWithFork:
		return "completed-with-fork"
	default:
		return "invalid"
	}
}

// Result is the outcome of one step at one node.
type Result struct {
	Kind ResultKind

	// Set for CompletedWithFork.
	Child int            // pid of the new process
	Tree  *compiler.Tree // the child's copy of the stepped tree
	Node  int            // the stepped node; same index in Tree
}

var (
	continuing = Result{Kind: Continuing}
	completed  = Result{Kind: Completed}
)

// Step executes exactly one instruction effect or one condition
// evaluation of process pid's main tree.
func (w *World) Step(pid int) Result {
	p := w.procs[pid]
	return w.step(p, p.Program, p.Program.Root)
}

// StepNode is Step restricted to the subtree of tree rooted at node.
// The dispatcher uses it to run handler blocks.
func (w *World) StepNode(pid int, tree *compiler.Tree, node int) Result {
	return w.step(w.procs[pid], tree, node)
}

func (w *World) step(p *Process, t *compiler.Tree, idx int) Result {
	n := t.Node(idx)

	switch n.Kind {
	case compiler.ProgramNode:
		if n.Cursor == -1 {
			if len(n.Children) == 0 {
				p.NextLine = 1
				w.Terminate(p.PID)
				return completed
			}
			// The implicit condition is always true and costs no step.
			n.Cursor = 0
			n.Cond = compiler.True
			p.NextLine = t.Node(n.Children[0]).Line
		}
		return w.descend(p, t, idx)

	case compiler.WhileRepeat:
		switch n.Cond {
		case compiler.Unevaluated:
			if n.Cursor != -1 {
				internalf(p.PID, "%s line %d: cursor %d on unevaluated loop", n.Kind, n.Line, n.Cursor)
			}
			v, err := w.eval(p, n)
			if err != nil {
				w.fail(p, n, err.Error())
				return continuing
			}
			if v != 0 {
				if len(n.Children) > 0 {
					n.Cursor = 0
					n.Cond = compiler.True
					p.NextLine = t.Node(n.Children[0]).Line
				}
			} else {
				n.Cond = compiler.False
			}
			return continuing

		case compiler.True:
			return w.descend(p, t, idx)

		case compiler.False:
			n.ResetNode()
			return completed

		default:
			internalf(p.PID, "%s line %d: invalid condition state %d", n.Kind, n.Line, n.Cond)
		}
	}

	if n.Kind.IsCompound() && n.Kind != compiler.SignalBlock {
		internalf(p.PID, "unhandled compound kind %s", n.Kind)
	}
	return w.exec(p, t, idx)
}

// descend steps the child under the cursor of a visited compound node
// and advances the cursor when the child completes.
func (w *World) descend(p *Process, t *compiler.Tree, idx int) Result {
	n := t.Node(idx)
	if n.Cursor < 0 || n.Cursor >= len(n.Children) {
		panic(&InternalError{
			PID: p.PID,
			Msg: "descend",
			Err: &compiler.CursorError{Node: idx, Cursor: n.Cursor, Len: len(n.Children)},
		})
	}

	res := w.step(p, t, n.Children[n.Cursor])
	if res.Kind == Continuing {
		return res
	}

	// On fork, the child's tree was copied before this node moved, so
	// its copy of the node sits at the same cursor.
	var twin *compiler.Node
	var child *Process
	if res.Kind == CompletedWithFork {
		child = w.procs[res.Child]
		twin = res.Tree.Node(idx)
		twin.Cursor++
	}
	n.Cursor++

	if n.Cursor < len(n.Children) {
		line := t.Node(n.Children[n.Cursor]).Line
		p.NextLine = line
		if child != nil {
			child.NextLine = line
		}
		return continuing
	}

	// Body exhausted.
	n.ResetNode()
	p.NextLine = n.Line
	if twin != nil {
		twin.ResetNode()
		child.NextLine = n.Line
	}

	if n.Kind != compiler.ProgramNode {
		return continuing
	}

	p.NextLine = 1
	w.Terminate(p.PID)
	if child != nil {
		child.NextLine = 1
		w.Terminate(child.PID)
		return Result{Kind: CompletedWithFork, Child: res.Child, Tree: res.Tree, Node: idx}
	}
	return completed
}
