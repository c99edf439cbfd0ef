package debugger

import (
	"context"
	"os"
	"syscall"

	"github.com/kolkov/minidbg/internal/logs"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/vm"
)

// EventKind classifies a posted signal.
type EventKind uint8

const (
	// Attach requests the debugger prompt.
	Attach EventKind = iota
	// Other is any other signal: it runs a handler block or falls back
	// to the default action.
	Other
)

func (k EventKind) String() string {
	if k == Attach {
		return "attach"
	}
	return "other"
}

// Event is a signal waiting for the next instruction boundary.
type Event struct {
	Kind   EventKind
	Signal syscall.Signal
}

// eventQueueSize bounds the signals pending between two boundaries.
const eventQueueSize = 64

// Dispatcher delivers signal events at instruction boundaries, never in
// the middle of a step.
type Dispatcher struct {
	w       *vm.World
	in      LineReader
	events  chan Event
	session *Session
	log     *logs.Logger

	// handling is set while a handler block runs; events posted
	// meanwhile wait until it is over.
	handling bool

	// Default is called for a signal no handler takes. The CLI restores
	// the OS default action and re-raises the signal.
	Default func(sig syscall.Signal)
}

// NewDispatcher creates a dispatcher whose prompts read from in and
// installs it as the world's boundary hook.
func NewDispatcher(w *vm.World, in LineReader) *Dispatcher {
	d := &Dispatcher{
		w:      w,
		in:     in,
		events: make(chan Event, eventQueueSize),
		log:    w.Logger(),
	}
	w.SetBoundary(d.Deliver)
	return d
}

// Session returns the debug session, or nil before the first attach.
func (d *Dispatcher) Session() *Session {
	return d.session
}

// Post queues ev. It is safe to call from any goroutine. When the queue
// is full the event is dropped.
func (d *Dispatcher) Post(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.log.Warn("signal dropped", "signal", runtime.SignalName(int(ev.Signal)))
	}
}

// Forward posts the signals received on c until ctx is done. The attach
// signal becomes an Attach event.
func (d *Dispatcher) Forward(ctx context.Context, c <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-c:
			s, ok := sig.(syscall.Signal)
			if !ok {
				continue
			}
			kind := Other
			if s == runtime.AttachSignal {
				kind = Attach
			}
			d.Post(Event{Kind: kind, Signal: s})
		}
	}
}

// Deliver handles every queued event. The world calls it at instruction
// boundaries.
func (d *Dispatcher) Deliver() {
	for !d.handling {
		select {
		case ev := <-d.events:
			d.handle(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(ev Event) {
	d.log.Debugf(logs.Main, "signal", "signal", runtime.SignalName(int(ev.Signal)), "kind", ev.Kind)
	if ev.Kind == Attach {
		d.attach()
		return
	}

	pid := d.w.LastElected()
	if d.session != nil {
		pid = d.session.PID()
	}
	p := d.w.Process(pid)
	if p != nil && !p.Terminated() && p.Handler != nil && p.Mask.Has(int(ev.Signal)) {
		d.runHandler(p)
		return
	}
	if d.Default != nil {
		d.Default(ev.Signal)
		return
	}
	d.log.Warn("signal ignored", "signal", runtime.SignalName(int(ev.Signal)))
}

func (d *Dispatcher) attach() {
	pid := d.w.LastElected()
	p := d.w.Process(pid)
	if p == nil {
		d.log.Warn("attach: no process elected yet")
		return
	}

	if d.session == nil {
		d.session = NewSession(d.w, d.in, pid)
	} else {
		d.session.Attach(pid)
	}
	if p.Terminated() {
		// The prompt still opens so that changeproc can pick a live process.
		_ = d.w.Console().Printf("interrupted after %s terminated\n", p.Name)
	} else {
		d.w.StartTrace(pid)
		_ = d.w.Console().Printf("interrupted at line %d\n", p.NextLine)
	}
	d.session.Prompt()
}

// runHandler runs each top-level instruction of p's handler block to
// completion.
func (d *Dispatcher) runHandler(p *vm.Process) {
	d.handling = true
	defer func() { d.handling = false }()

	root := p.Handler.Node(p.Handler.Root)
	for _, child := range root.Children {
		for !p.Terminated() {
			if d.w.AdvanceHandler(p.PID, child).Kind != vm.Continuing {
				break
			}
		}
	}
}
