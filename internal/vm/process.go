package vm

import (
	"sort"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/types"
)

// Status is the scheduling state of a process.
type Status uint8

const (
	Waiting      Status = iota // queued, not under trace
	Running                    // executing one step, not under trace
	IoWait                     // inside READ or PRINT
	SysPending                 // inside FORK bookkeeping
	Terminated                 // finished or killed; the record stays inert
	TraceEnd                   // under trace, at an instruction boundary
	TraceMidStep               // under trace, executing one step
)

var statusNames = [...]string{
	Waiting:      "waiting",
	Running:      "running",
	IoWait:       "iowait",
	SysPending:   "syspending",
	Terminated:   "terminated",
	TraceEnd:     "trace-end",
	TraceMidStep: "trace-midstep",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// MutexStatus is the relation of a process to the system mutex,
// orthogonal to Status.
type MutexStatus uint8

const (
	MutexIdle MutexStatus = iota
	MutexBlocked
	MutexHeld
)

func (m MutexStatus) String() string {
	switch m {
	case MutexIdle:
		return "mutex-idle"
	case MutexBlocked:
		return "mutex-blocked"
	case MutexHeld:
		return "mutex-held"
	default:
		return "invalid"
	}
}

// SignalSet is a set of signal numbers.
type SignalSet map[int]bool

// Add inserts sig.
func (s SignalSet) Add(sig int) { s[sig] = true }

// Del removes sig.
func (s SignalSet) Del(sig int) { delete(s, sig) }

// Has reports whether sig is in the set.
func (s SignalSet) Has(sig int) bool { return s[sig] }

// Signals returns the members in increasing order.
func (s SignalSet) Signals() []int {
	sigs := make([]int, 0, len(s))
	for sig := range s {
		sigs = append(sigs, sig)
	}
	sort.Ints(sigs)
	return sigs
}

func (s SignalSet) clone() SignalSet {
	c := make(SignalSet, len(s))
	for sig := range s {
		c[sig] = true
	}
	return c
}

// Process is the record of one simulated process. Its identity is its
// index in the world's process table.
type Process struct {
	PID  int
	Name string // source file

	Program  *compiler.Tree // main instruction tree
	Handler  *compiler.Tree // SIGNAL block, nil if none
	pristine *compiler.Tree // Program as loaded, for restart

	Mask    SignalSet // signals routed to Handler
	Symbols *types.SymbolTable
	initial []int // symbol values at load, for restart
	Heap    *types.Memory

	Status   Status
	Mutex    MutexStatus
	NextLine int // line of the next instruction, for display
	Lines    int // number of lines of the source file
}

func newProcess(pid int, prog *compiler.Program, heapSize int) *Process {
	p := &Process{
		PID:      pid,
		Name:     prog.File,
		Program:  prog.Tree.Clone(),
		pristine: prog.Tree.Clone(),
		Mask:     SignalSet{int(runtime.AttachSignal): true},
		Symbols:  prog.Symbols.Clone(),
		Heap:     types.NewMemory(heapSize),
		Status:   Waiting,
		NextLine: 1,
		Lines:    prog.Lines,
	}
	if prog.Handler != nil {
		p.Handler = prog.Handler.Clone()
	}
	p.initial = p.Symbols.Snapshot()
	return p
}

// clone deep-copies the process for FORK.
func (p *Process) clone(pid int) *Process {
	c := *p
	c.PID = pid
	c.Program = p.Program.Clone()
	c.pristine = p.pristine.Clone()
	if p.Handler != nil {
		c.Handler = p.Handler.Clone()
	}
	c.Mask = p.Mask.clone()
	c.Symbols = p.Symbols.Clone()
	c.initial = append([]int(nil), p.initial...)
	c.Heap = p.Heap.Clone()
	return &c
}

// Terminated reports whether the process has finished.
func (p *Process) Terminated() bool {
	return p.Status == Terminated
}

// Traced reports whether a debugger controls the process.
func (p *Process) Traced() bool {
	return p.Status == TraceEnd || p.Status == TraceMidStep
}

// CurrentLine returns the source line of the instruction the next step
// acts on.
func (p *Process) CurrentLine() int {
	return p.Program.CurrentLine()
}

// Lookup finds a symbol by name.
func (p *Process) Lookup(name string) (*types.Symbol, bool) {
	idx, ok := p.Symbols.Lookup(name)
	if !ok {
		return nil, false
	}
	return p.Symbols.At(idx), true
}

// rewind restores the tree and symbol values as loaded. The heap is
// left alone.
func (p *Process) rewind() {
	p.Program = p.pristine.Clone()
	if p.Handler != nil {
		p.Handler.Reset()
	}
	p.Symbols.Restore(p.initial)
	p.NextLine = 1
	p.Mutex = MutexIdle
}
