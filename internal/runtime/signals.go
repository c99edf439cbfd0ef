package runtime

import (
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// MaxMaskSignal is the highest signal number a SIGADD may name.
const MaxMaskSignal = 32

// AttachSignal requests a debugger attach. It is part of every mask.
const AttachSignal = unix.SIGQUIT

// SignalName returns the conventional name of a signal number,
// e.g. "SIGUSR1", or "signal N" when the platform has no name for it.
func SignalName(sig int) string {
	if name := unix.SignalName(syscall.Signal(sig)); name != "" {
		return name
	}
	return "signal " + strconv.Itoa(sig)
}

// ValidMaskSignal reports whether sig may be routed to a handler block.
// Signals that cannot be caught, SIGCONT and the attach signal are
// reserved.
func ValidMaskSignal(sig int) bool {
	if sig < 1 || sig > MaxMaskSignal {
		return false
	}
	switch syscall.Signal(sig) {
	case unix.SIGKILL, unix.SIGSTOP, unix.SIGCONT, AttachSignal:
		return false
	}
	return true
}
