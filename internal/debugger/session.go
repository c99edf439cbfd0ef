// Package debugger implements the interactive debug controller: a
// prompt bound to one simulated process at a time, with breakpoints and
// watched variables, and the dispatcher that turns OS signals into
// debugger attaches and handler runs at instruction boundaries.
package debugger

import (
	"io"
	"strings"

	"github.com/kolkov/minidbg/internal/vm"
)

// PromptSuffix follows the process name in the prompt.
const PromptSuffix = ":mdbg> "

// Session is the state of the debugger. It outlives a single prompt:
// breakpoints and watches persist across attaches.
type Session struct {
	w  *vm.World
	in LineReader

	pid     int      // attached process
	breaks  []int    // sorted, no duplicates
	watches []string // displayed after every step, duplicates allowed
	last    []string // last command, tokenized

	exit  bool // set by end and quit; unwinds nested prompts
	depth int  // nesting of Prompt
}

// NewSession creates a session attached to pid, reading commands from in.
func NewSession(w *vm.World, in LineReader, pid int) *Session {
	return &Session{w: w, in: in, pid: pid}
}

// PID returns the attached process.
func (s *Session) PID() int {
	return s.pid
}

// Attach binds the session to pid.
func (s *Session) Attach(pid int) {
	s.pid = pid
}

// Breakpoints returns the breakpoint lines in increasing order.
func (s *Session) Breakpoints() []int {
	return append([]int(nil), s.breaks...)
}

// Watches returns the displayed variables.
func (s *Session) Watches() []string {
	return append([]string(nil), s.watches...)
}

// LastCommand returns the last command run, tokenized.
func (s *Session) LastCommand() []string {
	return append([]string(nil), s.last...)
}

// Exited reports whether end or quit ended the current prompt.
func (s *Session) Exited() bool {
	return s.exit
}

func (s *Session) proc() *vm.Process {
	return s.w.Process(s.pid)
}

func (s *Session) printf(format string, args ...any) {
	_ = s.w.Console().Printf(format, args...)
}

// Prompt reads and runs commands until end or quit. A prompt entered
// while another is active (an attach during continue) shares its exit
// flag, so end and quit unwind every level.
func (s *Session) Prompt() {
	if s.depth == 0 {
		s.exit = false
	}
	s.depth++
	defer func() {
		s.depth--
		if s.depth == 0 {
			_ = s.in.Close()
		}
	}()

	for !s.exit {
		line, err := s.in.ReadLine(s.proc().Name + PromptSuffix)
		if err != nil {
			s.printf("\n")
			if err == io.EOF && s.in.Interactive() {
				continue
			}
			if err != io.EOF {
				s.w.Logger().Warn("debugger input", "error", err)
			}
			// Closed input detaches instead of spinning.
			s.Exec("end")
			return
		}
		s.Exec(line)
	}
}

// Exec runs one command line. Only the command word is case-folded.
func (s *Session) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	fields[0] = strings.ToLower(fields[0])
	s.last = fields

	cmd, ok := lookupCommand(fields[0])
	if !ok {
		s.printf("unknown command: %s (try help)\n", fields[0])
		return
	}
	args := fields[1:]
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		s.printf("usage: %s\n", cmd.usage)
		return
	}
	cmd.run(s, args)
}
