package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// RetryPrompt is written when READ gets a line that is not an integer.
const RetryPrompt = "expected int, try again\n"

// ErrNoInput is returned by ReadInt when the input is exhausted.
var ErrNoInput = errors.New("end of input while reading an integer")

// Console is the line-oriented terminal shared by every simulated
// process: READ consumes from In, PRINT writes to Out.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out *bufio.Writer

	lineCounts map[string]int // source file -> number of lines
}

// NewConsole creates a console over the given streams.
// A nil reader behaves as an empty input.
func NewConsole(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = strings.NewReader("")
	}
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Console{
		in:         br,
		out:        bufio.NewWriter(out),
		lineCounts: make(map[string]int),
	}
}

// Reader returns the buffered input, so that other line readers (the
// debugger prompt) consume the same stream.
func (c *Console) Reader() *bufio.Reader {
	return c.in
}

// ReadInt reads lines until one holds an integer, writing RetryPrompt
// after each rejected line.
func (c *Console) ReadInt() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		line, err := c.in.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return 0, ErrNoInput
			}
			return 0, err
		}
		s := strings.TrimSpace(line)
		if IsInteger(s) {
			if n, convErr := strconv.Atoi(s); convErr == nil {
				return n, nil
			}
		}
		if _, werr := c.out.WriteString(RetryPrompt); werr != nil {
			return 0, werr
		}
		if werr := c.out.Flush(); werr != nil {
			return 0, werr
		}
		if err != nil {
			return 0, ErrNoInput
		}
	}
}

// Print writes the parts with no separator and flushes.
func (c *Console) Print(parts ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range parts {
		if _, err := c.out.WriteString(p); err != nil {
			return err
		}
	}
	return c.out.Flush()
}

// Printf formats to the output and flushes.
func (c *Console) Printf(format string, args ...any) error {
	return c.Print(fmt.Sprintf(format, args...))
}

// CountLines returns the number of lines in the named file. Results are
// cached: source files do not change during a run.
func (c *Console) CountLines(name string) (int, error) {
	c.mu.Lock()
	n, ok := c.lineCounts[name]
	c.mu.Unlock()
	if ok {
		return n, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err = CountLines(f)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.lineCounts[name] = n
	c.mu.Unlock()
	return n, nil
}

// SetLineCount records the line count of a source that is not on disk.
func (c *Console) SetLineCount(name string, n int) {
	c.mu.Lock()
	c.lineCounts[name] = n
	c.mu.Unlock()
}

// CountLines counts the lines of r, including a final line without a
// trailing newline.
func CountLines(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}
