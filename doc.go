// Package minidbg emulates a small multiprogramming system with a
// debugger.
//
// Programs are written in a line-oriented toy language. Each loaded
// program runs as a simulated process; processes run one instruction at
// a time under a round-robin scheduler with random jitter, and share a
// memory segment and one binary mutex. FORK duplicates a process, and a
// SIGNAL block handles the signals its program adds to its mask.
//
// # Quick Start
//
//	prog, err := minidbg.Load("count.prog")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sys, err := minidbg.New([]*minidbg.Program{prog}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Close()
//	err = sys.Run(context.Background())
//
// # The Language
//
//	PROGRAM
//	NEW @ i : 0
//	WHILE @ 1 (i < 3) REPEAT
//	    PRINT @ "i=",i,"\n"
//	    COMPUTE @ i : i + 1
//	ENDWHILE @ 1
//	ENDPROGRAM
//
// Variables are integers, defined by NEW before use. LOAD and STORE
// address the process heap as base$index, or shared memory as _$index.
// MUTEX @ _ : _P and MUTEX @ _ : _V acquire and release the mutex.
//
// # Debugging
//
// The attach signal (SIGQUIT, Ctrl-\ on a terminal) stops the running
// process at the next instruction boundary and opens a prompt with
// step, continue, breakpoints, watches, and process control. See
// [System.Forward].
//
// # Configuration
//
// The [Config] type sets memory sizes, the scheduler seed, a per-step
// delay and diagnostics. [LoadConfigFile] reads it from a CUE file.
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [LoadError]: a program file that could not be read or compiled
//   - [ParseError]: syntax and semantic errors, with positions
//   - [RuntimeError]: logged when a process fails; only it terminates
//   - [InternalError]: a broken engine invariant, returned by Run
package minidbg
