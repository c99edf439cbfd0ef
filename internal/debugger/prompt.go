package debugger

import (
	"errors"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/kolkov/minidbg/internal/runtime"
)

// LineReader reads debugger command lines. ReadLine returns io.EOF when
// input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)

	// Interactive reports whether end of input may be followed by more
	// input, as with Ctrl-D on a terminal.
	Interactive() bool

	// Close releases the terminal. ReadLine may be called again after
	// Close.
	Close() error
}

// NewReader returns a line-editing reader when tty is a terminal and a
// plain reader over the console otherwise.
func NewReader(console *runtime.Console, tty *os.File) LineReader {
	if tty != nil && term.IsTerminal(int(tty.Fd())) {
		return NewLinerReader()
	}
	return NewConsoleReader(console)
}

type consoleReader struct {
	c *runtime.Console
}

// NewConsoleReader reads commands from the console input, the stream
// READ consumes, and writes prompts to the console output.
func NewConsoleReader(c *runtime.Console) LineReader {
	return &consoleReader{c: c}
}

func (r *consoleReader) ReadLine(prompt string) (string, error) {
	if err := r.c.Print(prompt); err != nil {
		return "", err
	}
	line, err := r.c.Reader().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *consoleReader) Interactive() bool { return false }

func (r *consoleReader) Close() error { return nil }

type linerReader struct {
	st      *liner.State
	history []string
}

// NewLinerReader reads commands from the terminal with line editing and
// history. Ctrl-C discards the line being typed.
//
// The terminal is only in raw mode between the first ReadLine and
// Close, so READ sees a normal terminal while programs run. History is
// kept across Close.
func NewLinerReader() LineReader {
	return &linerReader{}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	if r.st == nil {
		r.st = liner.NewLiner()
		r.st.SetCtrlCAborts(true)
		for _, h := range r.history {
			r.st.AppendHistory(h)
		}
	}
	line, err := r.st.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.st.AppendHistory(line)
		r.history = append(r.history, line)
	}
	return line, nil
}

func (r *linerReader) Interactive() bool { return true }

func (r *linerReader) Close() error {
	if r.st == nil {
		return nil
	}
	err := r.st.Close()
	r.st = nil
	return err
}
