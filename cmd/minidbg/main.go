// minidbg - multiprogramming emulator with an interactive debugger
//
// Runs one process per program file under a round-robin scheduler.
// SIGQUIT (Ctrl-\) attaches the debugger to the running process; other
// signals go to the SIGNAL block of the process that takes them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kolkov/minidbg"
)

// version is set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: minidbg [options] progfile [progfile ...] [verbose]"
	longUsage  = `Options:
  -v N              debug verbosity 0-5 (a trailing number does the same):
                    1 main loop, 2 tokens, 3 parsing, 4 steps, 5 scheduler
  -config file      read settings from a CUE file; flags override it
  -seed N           seed the scheduler (default: clock)
  -delay duration   sleep after every instruction, e.g. 200ms
  -mem N            cells of each process heap
  -shared N         cells of shared memory
  -trace file       write every diagnostic as JSON to file

Debugging arguments:
  -d                print the compiled programs to stderr and exit

Other:
  -h, --help        show this help message
  -version          show minidbg version and exit

Send SIGQUIT (Ctrl-\) to open the debugger; type help at its prompt.
`
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitInternal = 4
)

// The signals routed to the emulated processes.
var forwarded = []os.Signal{
	syscall.SIGQUIT, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM,
	syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGALRM,
}

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func main() {
	var (
		configFile string
		flags      minidbg.Config
		set        = map[string]bool{}
		dump       bool
	)

	intArg := func(i *int, name string) int {
		if *i+1 >= len(os.Args) {
			errorExitf("flag needs an argument: %s", name)
		}
		*i++
		n, err := strconv.Atoi(os.Args[*i])
		if err != nil {
			errorExitf("invalid value for %s: %s", name, os.Args[*i])
		}
		set[name] = true
		return n
	}
	strArg := func(i *int, name string) string {
		if *i+1 >= len(os.Args) {
			errorExitf("flag needs an argument: %s", name)
		}
		*i++
		set[name] = true
		return os.Args[*i]
	}

	var i int
	for i = 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-v":
			flags.Verbose = intArg(&i, arg)
		case "-config":
			configFile = strArg(&i, arg)
		case "-seed":
			flags.Seed = int64(intArg(&i, arg))
		case "-delay":
			d, err := time.ParseDuration(strArg(&i, arg))
			if err != nil {
				errorExitf("invalid value for -delay: %v", err)
			}
			flags.StepDelay = d
		case "-mem":
			flags.MemoryLimit = intArg(&i, arg)
		case "-shared":
			flags.SharedLimit = intArg(&i, arg)
		case "-trace":
			flags.TraceFile = strArg(&i, arg)
		case "-d":
			dump = true
		case "-h", "--help":
			fmt.Printf("minidbg %s - multiprogramming emulator\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(exitOK)
		case "-version", "--version":
			fmt.Printf("minidbg version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			os.Exit(exitOK)
		default:
			errorExitf("flag provided but not defined: %s", arg)
		}
	}

	// Remaining args are program files, optionally followed by the
	// verbosity.
	files := os.Args[i:]
	if n := len(files); n > 1 {
		if v, err := strconv.Atoi(files[n-1]); err == nil {
			flags.Verbose = v
			set["-v"] = true
			files = files[:n-1]
		}
	}
	if len(files) == 0 {
		errorExitf(shortUsage)
	}

	config := &minidbg.Config{}
	if configFile != "" {
		c, err := minidbg.LoadConfigFile(configFile)
		if err != nil {
			errorExit(err)
		}
		config = c
	}
	mergeFlags(config, &flags, set)
	if config.Verbose < 0 || config.Verbose > 5 {
		errorExitf("verbosity must be between 0 and 5, got %d", config.Verbose)
	}

	progs, errs := minidbg.LoadFiles(files)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "minidbg: %v\n", err)
	}
	if len(progs) == 0 {
		errorExit(minidbg.ErrNoPrograms)
	}

	sys, err := minidbg.New(progs, config)
	if err != nil {
		errorExit(err)
	}

	if dump {
		err := sys.Dump(os.Stderr)
		sys.Close()
		if err != nil {
			errorExit(err)
		}
		os.Exit(exitOK)
	}

	os.Exit(run(sys))
}

// run runs sys with the OS signals forwarded to it and returns the
// exit code.
func run(sys *minidbg.System) int {
	defer sys.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 16)
	signal.Notify(c, forwarded...)
	defer signal.Stop(c)
	go sys.Forward(ctx, c)

	// A signal no process takes gets its usual effect.
	sys.SetDefaultAction(func(sig syscall.Signal) {
		sys.Close()
		signal.Reset(sig)
		_ = unix.Kill(unix.Getpid(), sig)
	})

	err := sys.Run(ctx)
	var ie *minidbg.InternalError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ie):
		fmt.Fprintf(os.Stderr, "minidbg: %v\n", err)
		return exitInternal
	default:
		fmt.Fprintf(os.Stderr, "minidbg: %v\n", err)
		return exitError
	}
}

// mergeFlags overrides config with the flags given on the command line.
func mergeFlags(config, flags *minidbg.Config, set map[string]bool) {
	if set["-v"] {
		config.Verbose = flags.Verbose
	}
	if set["-seed"] {
		config.Seed = flags.Seed
	}
	if set["-delay"] {
		config.StepDelay = flags.StepDelay
	}
	if set["-mem"] {
		config.MemoryLimit = flags.MemoryLimit
	}
	if set["-shared"] {
		config.SharedLimit = flags.SharedLimit
	}
	if set["-trace"] {
		config.TraceFile = flags.TraceFile
	}
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "minidbg: "+format+"\n", args...)
	os.Exit(exitError)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "minidbg: %v\n", err)
	os.Exit(exitError)
}
