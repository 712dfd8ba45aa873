//go:build unix

package progtest

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/tpresley/todomvc-cycle/pkg/prog"
	"github.com/tpresley/todomvc-cycle/pkg/testutil"
)

// Interactive is a program running on a pseudo-terminal.
type Interactive struct {
	primary *os.File
	exitCh  chan int

	mu     sync.Mutex
	output strings.Builder
}

// RunInteractive runs p with all three fds connected to the secondary side
// of a new pseudo-terminal, for programs that refuse to run without one.
// Send keys with Send, synchronize on the program's output with WaitOutput,
// and collect the exit status with Wait.
func RunInteractive(t *testing.T, p prog.Program, args ...string) *Interactive {
	t.Helper()
	primary, secondary, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { primary.Close() })

	it := &Interactive{primary: primary, exitCh: make(chan int, 1)}
	// Collect the output side. This doubles as draining: a program that
	// writes more than the pty buffer would otherwise block. Reads fail
	// once the secondary side is closed.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := primary.Read(buf)
			if n > 0 {
				it.mu.Lock()
				it.output.Write(buf[:n])
				it.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	go func() {
		defer secondary.Close()
		it.exitCh <- prog.Run([3]*os.File{secondary, secondary, secondary},
			append([]string{"todomvc"}, args...), p)
	}()
	return it
}

// Send writes s to the terminal, as if typed.
func (it *Interactive) Send(t *testing.T, s string) {
	t.Helper()
	if _, err := it.primary.WriteString(s); err != nil {
		t.Fatal(err)
	}
}

// WaitOutput waits until the program's output so far contains sub. Output
// is matched against the raw byte stream, so sub must not span escape
// sequences; a string written by the program in one piece is safe.
func (it *Interactive) WaitOutput(t *testing.T, sub string) {
	t.Helper()
	deadline := time.Now().Add(testutil.Scaled(5 * time.Second))
	for {
		it.mu.Lock()
		out := it.output.String()
		it.mu.Unlock()
		if strings.Contains(out, sub) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for output %q; output so far:\n%q", sub, out)
		}
		time.Sleep(testutil.Scaled(10 * time.Millisecond))
	}
}

// Wait waits for the program to exit and returns its exit status.
func (it *Interactive) Wait(t *testing.T) int {
	t.Helper()
	select {
	case exit := <-it.exitCh:
		return exit
	case <-time.After(testutil.Scaled(5 * time.Second)):
		t.Fatal("program did not exit")
		return 0
	}
}
