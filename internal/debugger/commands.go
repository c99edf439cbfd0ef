package debugger

import (
	"sort"
	"strconv"

	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/vm"
)

// Messages printed by commands.
const (
	msgTerminated    = "process already terminated"
	msgNotTerminated = "process not terminated"
	msgNoVariable    = "variable not found: %s\n"
	msgBadLine       = "invalid line number"
	msgBadIndex      = "invalid index"
	msgBadProcess    = "invalid process index"
)

type command struct {
	name    string
	usage   string
	help    string
	minArgs int
	maxArgs int
	run     func(s *Session, args []string)
}

// commands is filled in init: help refers to it.
var commands []*command

func init() {
	commands = []*command{
		{"continue", "continue", "run to the next breakpoint or to the end", 0, 0, (*Session).cmdContinue},
		{"step", "step", "run one instruction and show watched variables", 0, 0, (*Session).cmdStep},
		{"print", "print NAME", "show a variable", 1, 1, (*Session).cmdPrint},
		{"display", "display NAME", "show a variable after every step", 1, 1, (*Session).cmdDisplay},
		{"modify", "modify NAME VALUE", "set a variable", 2, 2, (*Session).cmdModify},
		{"break", "break LINE", "stop before the instruction at LINE", 1, 1, (*Session).cmdBreak},
		{"show", "show display|break|proc", "list watches, breakpoints or processes", 1, 1, (*Session).cmdShow},
		{"remove", "remove display|break N", "delete a watch or a breakpoint", 2, 2, (*Session).cmdRemove},
		{"stop", "stop", "terminate the process", 0, 0, (*Session).cmdStop},
		{"start", "start [step]", "rerun a terminated process", 0, 1, (*Session).cmdStart},
		{"restart", "restart [step]", "stop, then start", 0, 1, (*Session).cmdRestart},
		{"changeproc", "changeproc N", "attach to process N", 1, 1, (*Session).cmdChangeproc},
		{"status", "status", "show the process status", 0, 0, (*Session).cmdStatus},
		{"end", "end", "detach and let every process run", 0, 0, (*Session).cmdEnd},
		{"quit", "quit", "terminate every process", 0, 0, (*Session).cmdQuit},
		{"help", "help", "list commands", 0, 0, (*Session).cmdHelp},
	}
}

func lookupCommand(name string) (*command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// atoi parses a debugger integer argument.
func atoi(s string) (int, bool) {
	if !runtime.IsInteger(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func (s *Session) cmdContinue(args []string) {
	p := s.proc()
	if p.Terminated() {
		s.printf("%s\n", msgTerminated)
		return
	}
	s.printf("resuming at line %d\n", p.NextLine)

	bp := 0
	cur := p.CurrentLine()
	for _, line := range s.breaks {
		if line >= cur {
			bp = line
			break
		}
	}

	// The first step moves off a breakpoint on the current line.
	s.w.Advance(p.PID)
	for !p.Terminated() {
		if s.exit {
			return
		}
		if bp != 0 && p.CurrentLine() == bp {
			s.printf("breakpoint at line %d\n", bp)
			return
		}
		if s.blocked(p) {
			return
		}
		s.w.Advance(p.PID)
	}
}

// blocked reports, and explains, a wait on a mutex that only another
// process can release.
func (s *Session) blocked(p *vm.Process) bool {
	if p.Mutex != vm.MutexBlocked {
		return false
	}
	h, busy := s.w.MutexHolder()
	if !busy || h == p.PID {
		return false
	}
	s.printf("waiting for the mutex held by process %d (%s)\n", h+1, s.w.Process(h).Name)
	return true
}

func (s *Session) cmdStep(args []string) {
	p := s.proc()
	if p.Terminated() {
		s.printf("%s\n", msgTerminated)
		return
	}
	s.printf("executing line %d\n", p.NextLine)
	s.w.Advance(p.PID)
	for _, name := range s.watches {
		s.show(name)
	}
}

// show prints a variable and reports whether it exists.
func (s *Session) show(name string) bool {
	sym, ok := s.proc().Lookup(name)
	if !ok {
		s.printf(msgNoVariable, name)
		return false
	}
	s.printf("%s = %s\n", sym.Name, sym.String())
	return true
}

func (s *Session) cmdPrint(args []string) {
	s.show(args[0])
}

func (s *Session) cmdDisplay(args []string) {
	if s.show(args[0]) {
		s.watches = append(s.watches, args[0])
	}
}

func (s *Session) cmdModify(args []string) {
	v, ok := atoi(args[1])
	if !ok {
		s.printf("usage: modify NAME VALUE\n")
		return
	}
	sym, ok := s.proc().Lookup(args[0])
	if !ok {
		s.printf(msgNoVariable, args[0])
		return
	}
	if sym.Const {
		s.printf("cannot modify constant %s\n", sym.Name)
		return
	}
	sym.Value = v
	s.printf("%s = %d\n", sym.Name, sym.Value)
}

func (s *Session) cmdBreak(args []string) {
	line, ok := atoi(args[0])
	if !ok {
		s.printf("usage: break LINE\n")
		return
	}
	p := s.proc()
	n, err := s.w.Console().CountLines(p.Name)
	if err != nil {
		n = p.Lines
	}
	if line < 1 || line > n {
		s.printf("%s\n", msgBadLine)
		return
	}

	i := sort.SearchInts(s.breaks, line)
	if i < len(s.breaks) && s.breaks[i] == line {
		s.printf("breakpoint already set\n")
		return
	}
	if line == p.CurrentLine() {
		s.printf("line %d is the next instruction: the breakpoint is ignored until it is reached again\n", line)
	}
	s.breaks = append(s.breaks, 0)
	copy(s.breaks[i+1:], s.breaks[i:])
	s.breaks[i] = line
	s.printf("[%d] line %d\n", i+1, line)
}

func (s *Session) cmdShow(args []string) {
	switch args[0] {
	case "display":
		for i, name := range s.watches {
			s.printf("[%d] ", i+1)
			s.show(name)
		}
	case "break":
		for i, line := range s.breaks {
			s.printf("[%d] line %d\n", i+1, line)
		}
	case "proc":
		for i, p := range s.w.Processes() {
			mark := ""
			if i == s.pid {
				mark = " *"
			}
			s.printf("[%d] %s %s,%s%s\n", i+1, p.Name, p.Status, p.Mutex, mark)
		}
	default:
		s.printf("show: expected display, break or proc\n")
	}
}

func (s *Session) cmdRemove(args []string) {
	n, ok := atoi(args[1])
	if !ok {
		s.printf("%s\n", msgBadIndex)
		return
	}
	i := n - 1

	switch args[0] {
	case "display":
		if i < 0 || i >= len(s.watches) {
			s.printf("%s\n", msgBadIndex)
			return
		}
		s.printf("removed watch %q\n", s.watches[i])
		s.watches = append(s.watches[:i], s.watches[i+1:]...)
	case "break":
		if i < 0 || i >= len(s.breaks) {
			s.printf("%s\n", msgBadIndex)
			return
		}
		s.printf("removed breakpoint [%d] at line %d\n", n, s.breaks[i])
		s.breaks = append(s.breaks[:i], s.breaks[i+1:]...)
	default:
		s.printf("remove: expected display or break\n")
	}
}

func (s *Session) cmdStop(args []string) {
	if s.proc().Terminated() {
		s.printf("%s\n", msgTerminated)
		return
	}
	s.w.Terminate(s.pid)
}

func (s *Session) cmdStart(args []string) {
	if len(args) == 1 && args[0] != "step" {
		s.printf("usage: start [step]\n")
		return
	}
	if !s.proc().Terminated() {
		s.printf("%s\n", msgNotTerminated)
		return
	}
	if err := s.w.Restart(s.pid); err != nil {
		s.printf("%v\n", err)
		return
	}
	if len(args) == 1 {
		s.cmdStep(nil)
	} else {
		s.cmdContinue(nil)
	}
}

func (s *Session) cmdRestart(args []string) {
	if len(args) == 1 && args[0] != "step" {
		s.printf("usage: restart [step]\n")
		return
	}
	s.cmdStop(nil)
	s.cmdStart(args)
}

func (s *Session) cmdChangeproc(args []string) {
	n, ok := atoi(args[0])
	if !ok {
		s.printf("usage: changeproc N\n")
		return
	}
	p := s.w.Process(n - 1)
	if p == nil {
		s.printf("%s\n", msgBadProcess)
		return
	}
	s.pid = p.PID
	if p.Status != vm.TraceEnd && !p.Terminated() {
		s.w.StartTrace(p.PID)
	}
	s.printf("process [%d] %s\n", n, p.Name)
}

func (s *Session) cmdStatus(args []string) {
	p := s.proc()
	s.printf("%s,%s\n", p.Status, p.Mutex)
}

func (s *Session) cmdEnd(args []string) {
	for _, p := range s.w.Processes() {
		if !p.Terminated() && p.Traced() {
			s.w.EndTrace(p.PID)
		}
	}
	s.exit = true
}

func (s *Session) cmdQuit(args []string) {
	for _, p := range s.w.Processes() {
		if !p.Terminated() {
			s.w.Terminate(p.PID)
		}
	}
	s.exit = true
}

func (s *Session) cmdHelp(args []string) {
	for _, c := range commands {
		s.printf("  %-24s %s\n", c.usage, c.help)
	}
}
