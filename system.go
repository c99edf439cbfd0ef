package minidbg

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"syscall"

	"github.com/kolkov/minidbg/internal/debugger"
	"github.com/kolkov/minidbg/internal/logs"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/vm"
)

// System runs a set of programs, one process each, under the scheduler
// and the debugger.
type System struct {
	progs    []*Program
	world    *vm.World
	dispatch *debugger.Dispatcher
	reader   debugger.LineReader
	log      *logs.Logger
	trace    *os.File
}

// ProcessInfo describes one process of a System.
type ProcessInfo struct {
	PID    int
	Name   string
	Status string
	Mutex  string
}

// New creates a System running progs. Compile warnings are logged.
// If config is nil, default configuration is used.
func New(progs []*Program, config *Config) (*System, error) {
	if len(progs) == 0 {
		return nil, ErrNoPrograms
	}
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	opts := logs.Options{Verbose: cfg.Verbose, Stderr: cfg.Stderr}
	if cfg.Logger != nil {
		opts.Handler = cfg.Logger.Handler()
	}
	s := &System{progs: progs}
	if cfg.TraceFile != "" {
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("trace file: %w", err)
		}
		s.trace = f
		opts.Trace = f
	}
	s.log = logs.New(opts)

	console := runtime.NewConsole(cfg.Stdin, cfg.Stdout)
	s.world = vm.New(vm.Config{
		MemoryLimit: cfg.MemoryLimit,
		SharedLimit: cfg.SharedLimit,
		Rand:        rand.New(rand.NewSource(cfg.Seed)),
		StepDelay:   cfg.StepDelay,
		Console:     console,
		Logger:      s.log,
	})
	for _, p := range progs {
		for _, w := range p.Warnings() {
			s.log.Warn(w)
		}
		s.world.Spawn(p.compiled)
	}

	var tty *os.File
	if f, ok := cfg.Stdin.(*os.File); ok {
		tty = f
	}
	s.reader = debugger.NewReader(console, tty)
	s.dispatch = debugger.NewDispatcher(s.world, s.reader)
	return s, nil
}

// Run schedules processes until all have terminated or ctx is done.
// A broken engine invariant is returned as *InternalError.
func (s *System) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*vm.InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	return s.world.Run(ctx)
}

// Forward delivers the OS signals received on c to the processes until
// ctx is done: the attach signal opens the debugger, others run the
// handler block of the current process.
func (s *System) Forward(ctx context.Context, c <-chan os.Signal) {
	s.dispatch.Forward(ctx, c)
}

// Signal queues sig for delivery at the next instruction boundary.
func (s *System) Signal(sig syscall.Signal) {
	kind := debugger.Other
	if sig == runtime.AttachSignal {
		kind = debugger.Attach
	}
	s.dispatch.Post(debugger.Event{Kind: kind, Signal: sig})
}

// SetDefaultAction sets the action for signals no handler block takes.
// Without one such signals are logged and ignored.
func (s *System) SetDefaultAction(fn func(sig syscall.Signal)) {
	s.dispatch.Default = fn
}

// Processes describes every process, terminated ones included.
func (s *System) Processes() []ProcessInfo {
	procs := s.world.Processes()
	infos := make([]ProcessInfo, len(procs))
	for i, p := range procs {
		infos[i] = ProcessInfo{PID: p.PID, Name: p.Name, Status: p.Status.String(), Mutex: p.Mutex.String()}
	}
	return infos
}

// Dump writes the listing of every loaded program.
func (s *System) Dump(w io.Writer) error {
	for _, p := range s.progs {
		if _, err := io.WriteString(w, p.Disassemble()); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the terminal and the trace file.
func (s *System) Close() error {
	err := s.reader.Close()
	if s.trace != nil {
		if cerr := s.trace.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
