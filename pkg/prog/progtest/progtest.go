// Package progtest provides utilities for testing subprograms.
package progtest

import (
	"io"
	"os"
	"sync"
	"testing"

	"github.com/tpresley/todomvc-cycle/pkg/must"
	"github.com/tpresley/todomvc-cycle/pkg/prog"
)

// Result captures the outcome of running a program.
type Result struct {
	Exit   int
	Stdout string
	Stderr string
}

// Run runs p the way a main function would, with "todomvc" prepended to
// args, an empty stdin, and stdout and stderr captured into the result.
func Run(t *testing.T, p prog.Program, args ...string) Result {
	t.Helper()
	return RunWithStdin(t, p, "", args...)
}

// RunWithStdin is Run with the given stdin content.
func RunWithStdin(t *testing.T, p prog.Program, stdin string, args ...string) Result {
	t.Helper()
	r0, w0 := must.OK2(os.Pipe())
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())
	defer r0.Close()
	defer r1.Close()
	defer r2.Close()

	go func() {
		w0.WriteString(stdin)
		w0.Close()
	}()
	// Drain the output pipes while the program runs; a program that writes
	// more than the pipe buffer would otherwise block.
	var wg sync.WaitGroup
	var stdout, stderr string
	drain := func(dst *string, r *os.File) {
		defer wg.Done()
		b, _ := io.ReadAll(r)
		*dst = string(b)
	}
	wg.Add(2)
	go drain(&stdout, r1)
	go drain(&stderr, r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, append([]string{"todomvc"}, args...), p)
	w1.Close()
	w2.Close()
	wg.Wait()
	return Result{Exit: exit, Stdout: stdout, Stderr: stderr}
}
