package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/logs"
	"github.com/kolkov/minidbg/internal/types"
)

// exec runs the effect of a leaf instruction.
func (w *World) exec(p *Process, t *compiler.Tree, idx int) Result {
	n := t.Node(idx)

	switch n.Kind {
	case compiler.Create, compiler.Copy:
		v, err := w.operand(p, n, 0)
		if err == nil {
			err = w.set(p, n, n.Target, v)
		}
		if err != nil {
			w.fail(p, n, err.Error())
			return continuing
		}

	case compiler.Compute:
		v, err := w.eval(p, n)
		if err == nil {
			err = w.set(p, n, n.Target, v)
		}
		if err != nil {
			w.fail(p, n, err.Error())
			return continuing
		}

	case compiler.Read:
		if !p.Symbols.Valid(n.Target) {
			w.fail(p, n, fmt.Sprintf(errBadSymbol, n.Target, n.Kind))
			return continuing
		}
		saved := p.Status
		p.Status = IoWait
		v, err := w.console.ReadInt()
		p.Status = saved
		if err != nil {
			w.fail(p, n, errNoInput)
			return continuing
		}
		p.Symbols.At(n.Target).Value = v

	case compiler.Print:
		parts := make([]string, 0, len(n.Operands))
		for _, op := range n.Operands {
			if !p.Symbols.Valid(op) {
				w.fail(p, n, fmt.Sprintf(errBadSymbol, op, n.Kind))
				return continuing
			}
			parts = append(parts, p.Symbols.At(op).String())
		}
		saved := p.Status
		p.Status = IoWait
		err := w.console.Print(parts...)
		p.Status = saved
		if err != nil {
			w.fail(p, n, fmt.Sprintf(errOutput, err))
			return continuing
		}

	case compiler.Load:
		if err := w.load(p, n); err != nil {
			w.fail(p, n, err.Error())
			return continuing
		}

	case compiler.Store:
		if err := w.store(p, n); err != nil {
			w.fail(p, n, err.Error())
			return continuing
		}

	case compiler.Fork:
		return w.fork(p, t, idx)

	case compiler.MutexOp:
		if !w.mutexOp(p, n) {
			return continuing
		}

	case compiler.SigAdd:
		p.Mask.Add(n.Target)

	case compiler.SigDel:
		p.Mask.Del(n.Target)

	case compiler.SignalBlock, compiler.Empty:
		// no effect

	default:
		internalf(p.PID, "line %d: unknown instruction kind %d", n.Line, n.Kind)
	}
	return completed
}

// operand returns the value of the k-th operand of n.
func (w *World) operand(p *Process, n *compiler.Node, k int) (int, error) {
	if k >= len(n.Operands) {
		return 0, fmt.Errorf("missing operand %d in %s", k+1, n.Kind)
	}
	return w.value(p, n, n.Operands[k])
}

func (w *World) value(p *Process, n *compiler.Node, sym int) (int, error) {
	if !p.Symbols.Valid(sym) {
		return 0, fmt.Errorf(errBadSymbol, sym, n.Kind)
	}
	return p.Symbols.At(sym).Value, nil
}

func (w *World) set(p *Process, n *compiler.Node, sym, v int) error {
	if !p.Symbols.Valid(sym) || p.Symbols.At(sym).Const {
		return fmt.Errorf(errBadSymbol, sym, n.Kind)
	}
	p.Symbols.At(sym).Value = v
	return nil
}

// eval applies the operator of n to its two operands. Comparisons
// yield 0 or 1.
func (w *World) eval(p *Process, n *compiler.Node) (int, error) {
	a, err := w.operand(p, n, 0)
	if err != nil {
		return 0, err
	}
	b, err := w.operand(p, n, 1)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case compiler.OpAdd:
		return a + b, nil
	case compiler.OpSub:
		return a - b, nil
	case compiler.OpMul:
		return a * b, nil
	case compiler.OpDiv:
		if b == 0 {
			return 0, errors.New(errDivZero)
		}
		return a / b, nil
	case compiler.OpRem:
		if b == 0 {
			return 0, errors.New(errRemZero)
		}
		return a % b, nil
	case compiler.OpGt:
		return boolInt(a > b), nil
	case compiler.OpLt:
		return boolInt(a < b), nil
	case compiler.OpGe:
		return boolInt(a >= b), nil
	case compiler.OpLe:
		return boolInt(a <= b), nil
	case compiler.OpEq:
		return boolInt(a == b), nil
	case compiler.OpNe:
		return boolInt(a != b), nil
	default:
		internalf(p.PID, "line %d: invalid operator %d in %s", n.Line, n.Op, n.Kind)
		return 0, nil
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// segment resolves a memory base: the shared sentinel selects shared
// memory at base 0, anything else is a symbol whose value is the base
// in the private heap.
func (w *World) segment(p *Process, n *compiler.Node, base int) (*types.Memory, int, error) {
	if base == compiler.Shared {
		return w.shared, 0, nil
	}
	v, err := w.value(p, n, base)
	return p.Heap, v, err
}

func (w *World) load(p *Process, n *compiler.Node) error {
	if len(n.Operands) < 2 {
		return fmt.Errorf("missing operand in %s", n.Kind)
	}
	mem, base, err := w.segment(p, n, n.Operands[0])
	if err != nil {
		return err
	}
	index, err := w.operand(p, n, 1)
	if err != nil {
		return err
	}
	addr := base + index
	v, defined, err := mem.Load(addr)
	if err != nil {
		return fmt.Errorf(errLoadBounds, addr, mem.Len())
	}
	if !defined {
		w.log.Warn("load of undefined memory cell", "file", n.File, "line", n.Line, "addr", addr)
	}
	return w.set(p, n, n.Target, v)
}

func (w *World) store(p *Process, n *compiler.Node) error {
	mem, base, err := w.segment(p, n, n.Target)
	if err != nil {
		return err
	}
	index, err := w.operand(p, n, 0)
	if err != nil {
		return err
	}
	v, err := w.operand(p, n, 1)
	if err != nil {
		return err
	}
	addr := base + index
	if err := mem.Store(addr, v); err != nil {
		return fmt.Errorf(errStoreBounds, addr, mem.Len())
	}
	return nil
}

// fork duplicates p. The child's copy of the FORK target is 0; the
// parent's is the child pid.
func (w *World) fork(p *Process, t *compiler.Tree, idx int) Result {
	n := t.Node(idx)
	if err := w.set(p, n, n.Target, 0); err != nil {
		w.fail(p, n, err.Error())
		return continuing
	}

	saved := p.Status
	p.Status = SysPending

	child := p.clone(len(w.procs))
	child.Status = Waiting
	child.Mutex = MutexIdle
	w.procs = append(w.procs, child)

	p.Symbols.At(n.Target).Value = child.PID
	w.sched.Enqueue(child.PID)
	w.live++
	p.Status = saved

	w.log.Debugf(logs.Exec, "fork", "pid", p.PID, "child", child.PID, "line", n.Line)

	twin := child.Program
	if t == p.Handler {
		twin = child.Handler
	}
	return Result{Kind: CompletedWithFork, Child: child.PID, Tree: twin, Node: idx}
}

// mutexOp runs P or V. It returns false when P finds the mutex held:
// the instruction has not completed and will be retried.
func (w *World) mutexOp(p *Process, n *compiler.Node) bool {
	if len(n.Operands) == 0 {
		internalf(p.PID, "line %d: MUTEX without operation", n.Line)
	}

	switch n.Operands[0] {
	case compiler.Acquire:
		if w.mutex == 1 {
			w.mutex = 0
			w.holder = p.PID
			p.Mutex = MutexHeld
			return true
		}
		p.Mutex = MutexBlocked
		return false

	case compiler.Release:
		if w.mutex == 1 {
			w.log.Warn("mutex released while free", "file", n.File, "line", n.Line, "pid", p.PID)
			return true
		}
		if h := w.Process(w.holder); h != nil {
			h.Mutex = MutexIdle
		}
		p.Mutex = MutexIdle
		w.mutex = 1
		w.holder = -1
		return true

	default:
		internalf(p.PID, errBadMutexCode, n.Operands[0])
		return false
	}
}

// fail reports a fatal runtime error and terminates p.
func (w *World) fail(p *Process, n *compiler.Node, msg string) {
	err := &RuntimeError{PID: p.PID, File: n.File, Line: n.Line, Msg: msg}
	w.log.RunError(err, "pid", p.PID)
	w.Terminate(p.PID)
}

// describe renders one line of the per-step trace:
// [pid]name:line KEYWORD operands status,mutex
func (w *World) describe(p *Process) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d]%s:%d", p.PID, p.Name, p.NextLine)
	if idx, err := p.Program.Current(); err == nil {
		n := p.Program.Node(idx)
		fmt.Fprintf(&sb, " %s", n.Kind)
		if d := compiler.Describe(n, p.Symbols); d != "" {
			sb.WriteString(" ")
			sb.WriteString(d)
		}
	}
	fmt.Fprintf(&sb, " %s,%s", p.Status, p.Mutex)
	return sb.String()
}
