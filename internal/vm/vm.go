// Package vm runs simulated processes: it owns the process table, the
// shared memory segment, the system mutex and the scheduler, and steps
// instruction trees one instruction at a time.
package vm

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/logs"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/types"
)

// DefaultMemoryLimit is the default size of heaps and of shared memory.
const DefaultMemoryLimit = 10000

// Config holds World configuration options.
type Config struct {
	// MemoryLimit is the number of cells of each private heap.
	// Default: DefaultMemoryLimit.
	MemoryLimit int

	// SharedLimit is the number of cells of shared memory.
	// Default: DefaultMemoryLimit.
	SharedLimit int

	// Rand drives the scheduler jitter. Default: seeded from the clock.
	Rand *rand.Rand

	// StepDelay is slept after every step, so that a human can attach
	// a debugger to a running program.
	StepDelay time.Duration

	// Console serves READ and PRINT. Default: stdin and stdout.
	Console *runtime.Console

	// Logger receives diagnostics. Default: discard.
	Logger *logs.Logger
}

// World is the whole simulated machine.
type World struct {
	procs  []*Process
	shared *types.Memory

	mutex  int // 1 free, 0 held
	holder int // pid holding the mutex, -1 when free

	sched *Scheduler
	live  int // processes not yet terminated

	console *runtime.Console
	log     *logs.Logger
	delay   time.Duration
	heap    int

	lastElected int
	masked      int    // nesting of masked advances
	boundary    func() // run at every unmasked instruction boundary
}

// New creates an empty world.
func New(config Config) *World {
	if config.MemoryLimit <= 0 {
		config.MemoryLimit = DefaultMemoryLimit
	}
	if config.SharedLimit <= 0 {
		config.SharedLimit = DefaultMemoryLimit
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if config.Console == nil {
		config.Console = runtime.NewConsole(os.Stdin, os.Stdout)
	}
	if config.Logger == nil {
		config.Logger = logs.Discard()
	}

	return &World{
		shared:      types.NewMemory(config.SharedLimit),
		mutex:       1,
		holder:      -1,
		sched:       NewScheduler(config.Rand, config.Logger),
		console:     config.Console,
		log:         config.Logger,
		delay:       config.StepDelay,
		heap:        config.MemoryLimit,
		lastElected: -1,
	}
}

// Spawn creates a process running prog and queues it.
func (w *World) Spawn(prog *compiler.Program) *Process {
	p := newProcess(len(w.procs), prog, w.heap)
	w.procs = append(w.procs, p)
	w.live++
	w.sched.Enqueue(p.PID)
	w.console.SetLineCount(p.Name, p.Lines)
	w.log.Debugf(logs.Main, "process loaded", "pid", p.PID, "file", p.Name)
	return p
}

// Process returns the process with the given pid, or nil.
func (w *World) Process(pid int) *Process {
	if pid < 0 || pid >= len(w.procs) {
		return nil
	}
	return w.procs[pid]
}

// Processes returns the process table, terminated records included.
func (w *World) Processes() []*Process {
	return w.procs
}

// Live returns the number of processes that have not terminated.
func (w *World) Live() int {
	return w.live
}

// Scheduler returns the ready queue.
func (w *World) Scheduler() *Scheduler {
	return w.sched
}

// Shared returns the shared memory segment.
func (w *World) Shared() *types.Memory {
	return w.shared
}

// Console returns the console used by READ and PRINT.
func (w *World) Console() *runtime.Console {
	return w.console
}

// Logger returns the diagnostics logger.
func (w *World) Logger() *logs.Logger {
	return w.log
}

// MutexHolder returns the pid holding the mutex.
func (w *World) MutexHolder() (int, bool) {
	return w.holder, w.mutex == 0
}

// LastElected returns the pid most recently elected by Run, or -1.
func (w *World) LastElected() int {
	return w.lastElected
}

// SetBoundary installs fn to run at every instruction boundary outside
// a masked step. Signal delivery hooks in here.
func (w *World) SetBoundary(fn func()) {
	w.boundary = fn
}

// Run elects and advances processes until none is live.
func (w *World) Run(ctx context.Context) error {
	for w.live > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		pid, ok := w.sched.Elect()
		if !ok {
			// Events may still revive a process.
			w.deliver()
			if w.live > 0 && w.sched.Len() == 0 {
				return ErrStalled
			}
			continue
		}
		w.lastElected = pid
		w.Advance(pid)
	}
	w.log.Debugf(logs.Main, "all processes terminated", "procs", len(w.procs))
	return nil
}

// deliver runs the boundary hook unless a step is in progress.
func (w *World) deliver() {
	if w.masked == 0 && w.boundary != nil {
		w.boundary()
	}
}
