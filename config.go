package minidbg

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/kolkov/minidbg/internal/vm"
)

// Config holds configuration options for a System.
type Config struct {
	// Verbose selects debug diagnostics, 0 (none) to 5: 1 main loop,
	// 2 tokens, 3 parsing, 4 per-step process trace, 5 scheduler.
	Verbose int

	// MemoryLimit is the number of cells of each process heap
	// (default: 10000).
	MemoryLimit int

	// SharedLimit is the number of cells of shared memory
	// (default: 10000).
	SharedLimit int

	// Seed seeds the scheduler. Zero seeds from the clock.
	Seed int64

	// StepDelay is slept after every instruction, which leaves time to
	// attach the debugger to a running program.
	StepDelay time.Duration

	// Stdin feeds READ and, when it is not a terminal, the debugger
	// prompt (default: os.Stdin).
	Stdin io.Reader

	// Stdout receives PRINT output and the debugger's messages
	// (default: os.Stdout).
	Stdout io.Writer

	// Stderr receives diagnostics (default: os.Stderr).
	Stderr io.Writer

	// TraceFile, if set, receives every diagnostic record as JSON.
	TraceFile string

	// Logger, if set, receives diagnostics in place of Stderr.
	Logger *slog.Logger
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.MemoryLimit <= 0 {
		c.MemoryLimit = vm.DefaultMemoryLimit
	}
	if c.SharedLimit <= 0 {
		c.SharedLimit = vm.DefaultMemoryLimit
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
}

// configSchema constrains configuration files.
const configSchema = `
verbose?:     int & >=0 & <=5
memoryLimit?: int & >0
sharedLimit?: int & >0
seed?:        int
stepDelay?:   string
traceFile?:   string
`

// fileConfig is the decoded form of a configuration file.
type fileConfig struct {
	Verbose     *int   `json:"verbose"`
	MemoryLimit *int   `json:"memoryLimit"`
	SharedLimit *int   `json:"sharedLimit"`
	Seed        *int64 `json:"seed"`
	StepDelay   string `json:"stepDelay"`
	TraceFile   string `json:"traceFile"`
}

// LoadConfigFile reads a CUE configuration file, for example:
//
//	verbose:     1
//	seed:        42
//	stepDelay:   "200ms"
//	sharedLimit: 256
//
// Unknown fields are rejected. Fields missing from the file are left
// at their zero value, so that defaults and flags still apply.
func LoadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(path, content)
}

func parseConfig(path string, content []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + configSchema + "})")
	if err := schema.Err(); err != nil {
		return nil, err
	}

	value := ctx.CompileBytes(content, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, err
	}
	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := value.Decode(&fc); err != nil {
		return nil, err
	}

	c := &Config{TraceFile: fc.TraceFile}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}
	if fc.MemoryLimit != nil {
		c.MemoryLimit = *fc.MemoryLimit
	}
	if fc.SharedLimit != nil {
		c.SharedLimit = *fc.SharedLimit
	}
	if fc.Seed != nil {
		c.Seed = *fc.Seed
	}
	if fc.StepDelay != "" {
		d, err := time.ParseDuration(fc.StepDelay)
		if err != nil {
			return nil, fmt.Errorf("%s: stepDelay: %w", path, err)
		}
		c.StepDelay = d
	}
	return c, nil
}
