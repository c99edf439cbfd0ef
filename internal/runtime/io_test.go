package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadIntRetries(t *testing.T) {
	var out strings.Builder
	c := NewConsole(strings.NewReader("\nabc\n 17 \n"), &out)

	n, err := c.ReadInt()
	if err != nil {
		t.Fatalf("ReadInt: %v", err)
	}
	if n != 17 {
		t.Errorf("ReadInt = %d, want 17", n)
	}
	if got := strings.Count(out.String(), RetryPrompt); got != 2 {
		t.Errorf("retry prompts = %d, want 2 (output %q)", got, out.String())
	}
}

func TestReadIntLastLineWithoutNewline(t *testing.T) {
	c := NewConsole(strings.NewReader("-5"), &strings.Builder{})
	n, err := c.ReadInt()
	if err != nil || n != -5 {
		t.Errorf("ReadInt = %d, %v", n, err)
	}
}

func TestReadIntEOF(t *testing.T) {
	var out strings.Builder
	c := NewConsole(strings.NewReader("oops"), &out)
	if _, err := c.ReadInt(); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
	if !strings.Contains(out.String(), RetryPrompt) {
		t.Errorf("bad line should be rejected, output %q", out.String())
	}

	c = NewConsole(nil, &out)
	if _, err := c.ReadInt(); !errors.Is(err, ErrNoInput) {
		t.Errorf("nil reader: err = %v, want ErrNoInput", err)
	}
}

func TestPrint(t *testing.T) {
	var out strings.Builder
	c := NewConsole(nil, &out)
	if err := c.Print("x=", "5", "\n"); err != nil {
		t.Fatal(err)
	}
	if err := c.Printf("%d-%s", 1, "a"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "x=5\n1-a" {
		t.Errorf("output = %q", got)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\n\n\nb\n", 4},
	}
	for _, tt := range tests {
		n, err := CountLines(strings.NewReader(tt.src))
		if err != nil || n != tt.want {
			t.Errorf("CountLines(%q) = %d, %v, want %d", tt.src, n, err, tt.want)
		}
	}
}

func TestConsoleCountLinesCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("PROGRAM\nENDPROGRAM\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewConsole(nil, &strings.Builder{})

	n, err := c.CountLines(path)
	if err != nil || n != 2 {
		t.Fatalf("CountLines = %d, %v", n, err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if n, err := c.CountLines(path); err != nil || n != 2 {
		t.Errorf("cached CountLines = %d, %v", n, err)
	}

	c.SetLineCount("inline", 9)
	if n, _ := c.CountLines("inline"); n != 9 {
		t.Errorf("SetLineCount not honored: %d", n)
	}
	if _, err := c.CountLines(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file should fail")
	}
}
