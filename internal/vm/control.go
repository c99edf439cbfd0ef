package vm

import (
	"context"
	"fmt"
	"time"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/logs"
)

// Terminate ends process pid. A traced process announces its end on the
// console. A held mutex is released. Terminated processes are ignored.
func (w *World) Terminate(pid int) {
	p := w.Process(pid)
	if p == nil || p.Status == Terminated {
		return
	}
	if p.Traced() {
		_ = w.console.Printf("process terminated: %s\n", p.Name)
	}
	p.Status = Terminated
	w.live--

	if w.mutex == 0 && w.holder == pid {
		w.mutex = 1
		w.holder = -1
	}
	p.Mutex = MutexIdle

	w.log.Debugf(logs.Main, "process terminated", "pid", pid, "file", p.Name, "live", w.live)
}

// StartTrace puts pid under debugger control and queues it.
func (w *World) StartTrace(pid int) {
	p := w.Process(pid)
	if p == nil {
		return
	}
	w.sched.Enqueue(pid)
	if p.Status != TraceMidStep {
		p.Status = TraceEnd
	}
}

// EndTrace releases pid from debugger control and queues it.
func (w *World) EndTrace(pid int) {
	p := w.Process(pid)
	if p == nil {
		return
	}
	p.Status = Waiting
	w.sched.Enqueue(pid)
}

// Restart reloads a terminated process: its tree and symbol values are
// restored as loaded, and it comes back under trace. Memory is kept.
func (w *World) Restart(pid int) error {
	p := w.Process(pid)
	if p == nil {
		return fmt.Errorf("no process %d", pid)
	}
	if p.Status != Terminated {
		return fmt.Errorf("process %d not terminated", pid)
	}
	p.rewind()
	p.Status = TraceEnd
	w.live++
	return nil
}

// Advance runs one step of pid with signal delivery masked, then
// requeues it unless it terminated. Pending signals are delivered once
// the step is over.
func (w *World) Advance(pid int) Result {
	p := w.Process(pid)
	if p == nil || p.Terminated() {
		return completed
	}
	return w.advance(p, func() Result {
		return w.step(p, p.Program, p.Program.Root)
	})
}

// AdvanceHandler is Advance for one node of pid's handler tree.
func (w *World) AdvanceHandler(pid, node int) Result {
	p := w.Process(pid)
	if p == nil || p.Terminated() || p.Handler == nil {
		return completed
	}
	return w.advance(p, func() Result {
		return w.step(p, p.Handler, node)
	})
}

func (w *World) advance(p *Process, step func() Result) Result {
	w.masked++

	if p.Status == TraceEnd {
		p.Status = TraceMidStep
	} else {
		p.Status = Running
	}
	if w.log.Enabled(logs.Exec) {
		ctx := logs.WithProcess(context.Background(), p.PID, p.Name)
		w.log.DebugContext(ctx, w.describe(p), "cat", logs.Exec.String())
	}

	res := step()

	if p.Status != Terminated {
		if p.Status == TraceMidStep {
			p.Status = TraceEnd
		} else {
			p.Status = Waiting
		}
		w.sched.Enqueue(p.PID)
	}

	w.masked--
	w.deliver()

	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	return res
}

// CheckTrees verifies the cursor invariant of every tree in the world.
func (w *World) CheckTrees() error {
	for _, p := range w.procs {
		trees := []*compiler.Tree{p.Program}
		if p.Handler != nil {
			trees = append(trees, p.Handler)
		}
		for _, t := range trees {
			if err := t.Check(); err != nil {
				return &InternalError{PID: p.PID, Msg: "cursor invariant", Err: err}
			}
		}
	}
	return nil
}
