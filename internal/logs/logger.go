// Package logs builds the diagnostics logger shared by the emulator.
//
// Diagnostics go to a text handler on stderr and, optionally, to a JSON
// trace file, fanned out with slog-multi. Debug output is split into
// verbosity categories: a message of category c is emitted only when the
// configured verbosity is at least c.
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Category is a class of debug diagnostics. Its value is the minimum
// verbosity that enables it.
type Category int

const (
	Main   Category = iota + 1 // main loop steps
	Tokens                     // scanned tokens
	Parse                      // parser progress
	Exec                       // per-step process trace
	Sched                      // scheduler decisions
)

// MaxVerbose is the highest meaningful verbosity.
const MaxVerbose = int(Sched)

var categoryNames = [...]string{
	Main:   "main",
	Tokens: "tokens",
	Parse:  "parse",
	Exec:   "exec",
	Sched:  "sched",
}

func (c Category) String() string {
	if c >= Main && c <= Sched {
		return categoryNames[c]
	}
	return "unknown"
}

// Options configures New.
type Options struct {
	// Verbose is the verbosity, 0 to MaxVerbose.
	Verbose int

	// Stderr receives text diagnostics. Default: os.Stderr.
	Stderr io.Writer

	// Trace, if set, additionally receives every record as JSON,
	// regardless of the stderr level.
	Trace io.Writer

	// Handler, if set, replaces the text handler on Stderr.
	Handler slog.Handler
}

// Logger is a slog.Logger with verbosity categories.
type Logger struct {
	*slog.Logger
	level   *slog.LevelVar
	verbose int
}

// New creates a logger.
func New(opts Options) *Logger {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	level := new(slog.LevelVar)
	primary := opts.Handler
	if primary == nil {
		primary = slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		})
	}
	handlers := []slog.Handler{primary}
	if opts.Trace != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.Trace, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	l := &Logger{
		Logger: slog.New(&Handler{Handler: slogmulti.Fanout(handlers...)}),
		level:  level,
	}
	l.SetVerbose(opts.Verbose)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Stderr: io.Discard})
}

// SetVerbose changes the verbosity.
func (l *Logger) SetVerbose(v int) {
	l.verbose = v
	if v > 0 {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelWarn)
	}
}

// Verbose returns the verbosity.
func (l *Logger) Verbose() int {
	return l.verbose
}

// Enabled reports whether messages of category c are emitted.
func (l *Logger) Enabled(c Category) bool {
	return l.verbose >= int(c)
}

// Debugf logs a debug message of category c.
func (l *Logger) Debugf(c Category, msg string, args ...any) {
	if !l.Enabled(c) {
		return
	}
	l.Logger.Log(context.Background(), slog.LevelDebug, msg, append(args, "cat", c.String())...)
}

// RunError logs a fatal runtime error of a simulated process.
func (l *Logger) RunError(err error, args ...any) {
	l.Logger.Error("run error", append(args, "error", err)...)
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
