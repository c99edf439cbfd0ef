package vm

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/kolkov/minidbg/internal/compiler"
	"github.com/kolkov/minidbg/internal/logs"
	"github.com/kolkov/minidbg/internal/parser"
	"github.com/kolkov/minidbg/internal/runtime"
	"github.com/kolkov/minidbg/internal/semantic"
)

// Helper to compile a program source.
func compileProgram(t *testing.T, name, source string) *compiler.Program {
	t.Helper()

	prog, err := parser.ParseFile(name, []byte(source))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	resolved, err := semantic.Analyze(prog)
	if err != nil {
		t.Fatalf("semantic error: %v", err)
	}
	compiled, err := compiler.Compile(prog, resolved)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return compiled
}

type fixture struct {
	w   *World
	out *bytes.Buffer
	log *bytes.Buffer
}

// newFixture builds a world running each source once, with a seeded
// scheduler and the given console input.
func newFixture(t *testing.T, input string, config Config, sources ...string) *fixture {
	t.Helper()
	f := &fixture{out: &bytes.Buffer{}, log: &bytes.Buffer{}}
	config.Console = runtime.NewConsole(strings.NewReader(input), f.out)
	config.Logger = logs.New(logs.Options{Stderr: f.log})
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(1))
	}
	f.w = New(config)
	for i, src := range sources {
		f.w.Spawn(compileProgram(t, "p"+string(rune('0'+i))+".prog", src))
	}
	return f
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	if err := f.w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func (f *fixture) sym(t *testing.T, pid int, name string) int {
	t.Helper()
	s, ok := f.w.Process(pid).Lookup(name)
	if !ok {
		t.Fatalf("process %d has no %q", pid, name)
	}
	return s.Value
}

func TestRunLoop(t *testing.T) {
	f := newFixture(t, "", Config{}, `PROGRAM
NEW @ i : 0
WHILE @ 1 (i < 3) REPEAT
    PRINT @ "i=",i,"\n"
    COMPUTE @ i : i + 1
ENDWHILE @ 1
PRINT @ "done\n"
ENDPROGRAM
`)
	f.run(t)

	if got, want := f.out.String(), "i=0\ni=1\ni=2\ndone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if f.w.Live() != 0 || !f.w.Process(0).Terminated() {
		t.Error("process should be terminated")
	}
}

func TestRunInterleaved(t *testing.T) {
	src := `PROGRAM
NEW @ i : 0
WHILE @ 1 (i < 4) REPEAT
    COMPUTE @ i : i + 1
ENDWHILE @ 1
PRINT @ "end\n"
ENDPROGRAM
`
	f := newFixture(t, "", Config{}, src, src, src)
	f.run(t)

	if got := strings.Count(f.out.String(), "end\n"); got != 3 {
		t.Errorf("output = %q, want three ends", f.out.String())
	}
	for pid := 0; pid < 3; pid++ {
		if v := f.sym(t, pid, "i"); v != 4 {
			t.Errorf("process %d: i = %d, want 4", pid, v)
		}
	}
}

func TestArithmetic(t *testing.T) {
	f := newFixture(t, "", Config{}, `PROGRAM
NEW @ a : 17
NEW @ b : 5
NEW @ r : 0
COMPUTE @ r : a + b
PRINT @ r,","
COMPUTE @ r : a - b
PRINT @ r,","
COMPUTE @ r : a * b
PRINT @ r,","
COMPUTE @ r : a / b
PRINT @ r,","
COMPUTE @ r : a % b
PRINT @ r,","
COMPUTE @ r : a > b
PRINT @ r
COMPUTE @ r : a < b
PRINT @ r
COMPUTE @ r : a >= 17
PRINT @ r
COMPUTE @ r : a <= 16
PRINT @ r
COMPUTE @ r : a == 17
PRINT @ r
COMPUTE @ r : a != 17
PRINT @ r,"\n"
COPY @ r : b
PRINT @ r,"\n"
ENDPROGRAM
`)
	f.run(t)

	if got, want := f.out.String(), "22,12,85,3,2,101010\n5\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, op := range []string{"/", "%"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t, "", Config{}, `PROGRAM
NEW @ a : 1
NEW @ b : 0
COMPUTE @ a : a `+op+` b
PRINT @ "unreachable"
ENDPROGRAM
`)
			for i := 0; i < 3; i++ {
				f.w.Advance(0)
			}
			if !f.w.Process(0).Terminated() {
				t.Fatal("process should terminate on division by zero")
			}
			f.w.Advance(0)
			if f.out.Len() != 0 {
				t.Errorf("instructions ran after the error: %q", f.out.String())
			}
			if !strings.Contains(f.log.String(), "by zero") || !strings.Contains(f.log.String(), "p0.prog:4") {
				t.Errorf("log = %q", f.log.String())
			}
			if f.w.Live() != 0 {
				t.Errorf("live = %d", f.w.Live())
			}
		})
	}
}

func TestMemory(t *testing.T) {
	f := newFixture(t, "", Config{}, `PROGRAM
NEW @ base : 100
NEW @ v : 7
NEW @ got : 0
STORE @ base$5 : v
LOAD @ got : base$5
PRINT @ got,"\n"
STORE @ _$3 : 9
LOAD @ got : _$3
PRINT @ got,"\n"
LOAD @ got : _$4
PRINT @ got,"\n"
ENDPROGRAM
`)
	f.run(t)

	if got, want := f.out.String(), "7\n9\n0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if v, _, _ := f.w.Process(0).Heap.Load(105); v != 7 {
		t.Errorf("heap[105] = %d", v)
	}
	if v, _, _ := f.w.Shared().Load(3); v != 9 {
		t.Errorf("shared[3] = %d", v)
	}
	if !strings.Contains(f.log.String(), "undefined memory cell") {
		t.Errorf("load of unwritten cell should warn, log %q", f.log.String())
	}
}

func TestMemoryBounds(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		msg  string
	}{
		{"store at limit", "STORE @ _$4 : v", "out of bounds in STORE"},
		{"store negative", "STORE @ neg$0 : v", "out of bounds in STORE"},
		{"load at limit", "LOAD @ v : _$4", "out of bounds in LOAD"},
		{"heap load past limit", "LOAD @ v : v$8", "out of bounds in LOAD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			neg := "NEW @ neg : 0\nCOMPUTE @ neg : neg - 1\n"
			f := newFixture(t, "", Config{MemoryLimit: 8, SharedLimit: 4},
				"PROGRAM\nNEW @ v : 1\n"+neg+tt.stmt+"\nPRINT @ \"after\"\nENDPROGRAM\n")
			f.run(t)
			if f.out.Len() != 0 {
				t.Errorf("output = %q", f.out.String())
			}
			if !strings.Contains(f.log.String(), tt.msg) {
				t.Errorf("log = %q, want %q", f.log.String(), tt.msg)
			}
		})
	}
}

func TestRead(t *testing.T) {
	src := `PROGRAM
NEW @ n : 0
READ @ n
PRINT @ "got ",n,"\n"
ENDPROGRAM
`
	f := newFixture(t, "x\n\n42\n", Config{}, src)
	f.run(t)
	if got, want := f.out.String(), runtime.RetryPrompt+runtime.RetryPrompt+"got 42\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	f = newFixture(t, "", Config{}, src)
	f.run(t)
	if f.out.Len() != 0 || !strings.Contains(f.log.String(), "end of input") {
		t.Errorf("EOF: output %q, log %q", f.out.String(), f.log.String())
	}
}

func TestSignalMask(t *testing.T) {
	f := newFixture(t, "", Config{}, `PROGRAM
SIGADD @ 10
SIGADD @ 12
SIGDEL @ 10
ENDPROGRAM
`)
	p := f.w.Process(0)
	if !p.Mask.Has(int(runtime.AttachSignal)) {
		t.Error("attach signal should start in the mask")
	}
	f.run(t)
	got := p.Mask.Signals()
	if len(got) != 2 || got[0] != int(runtime.AttachSignal) || got[1] != 12 {
		t.Errorf("mask = %v", got)
	}
}

func TestEmptyProgram(t *testing.T) {
	f := newFixture(t, "", Config{}, "PROGRAM\nENDPROGRAM\n")
	if res := f.w.Step(0); res.Kind != Completed {
		t.Errorf("result = %v", res.Kind)
	}
	if !f.w.Process(0).Terminated() {
		t.Error("empty program should terminate on its first step")
	}
}

func TestInternalError(t *testing.T) {
	f := newFixture(t, "", Config{}, "PROGRAM\nNOTHING\nENDPROGRAM\n")
	p := f.w.Process(0)
	p.Program.Node(p.Program.Root).Cursor = 7

	defer func() {
		r := recover()
		err, ok := r.(error)
		var ie *InternalError
		if !ok || !errors.As(err, &ie) {
			t.Fatalf("recovered %v, want *InternalError", r)
		}
		var ce *compiler.CursorError
		if !errors.As(err, &ce) || ce.Cursor != 7 {
			t.Errorf("cause = %v", ie.Err)
		}
	}()
	f.w.Step(0)
}

func TestRunStalled(t *testing.T) {
	f := newFixture(t, "", Config{}, "PROGRAM\nNOTHING\nENDPROGRAM\n")
	f.w.Scheduler().Elect()
	if err := f.w.Run(context.Background()); !errors.Is(err, ErrStalled) {
		t.Errorf("Run = %v, want ErrStalled", err)
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t, "", Config{}, "PROGRAM\nNOTHING\nENDPROGRAM\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v", err)
	}
}

func TestStatusNames(t *testing.T) {
	if TraceMidStep.String() != "trace-midstep" || SysPending.String() != "syspending" {
		t.Error("status names")
	}
	if MutexBlocked.String() != "mutex-blocked" {
		t.Error("mutex status names")
	}
	if CompletedWithFork.String() != "completed-with-fork" {
		t.Error("result names")
	}
}
