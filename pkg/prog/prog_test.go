package prog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/tpresley/todomvc-cycle/pkg/prog"
	"github.com/tpresley/todomvc-cycle/pkg/prog/progtest"
	"github.com/tpresley/todomvc-cycle/pkg/testutil"
)

func TestBadFlag(t *testing.T) {
	r := progtest.Run(t, testProgram{}, "-bad-flag")
	if r.Exit != 2 {
		t.Errorf("got exit %d, want 2", r.Exit)
	}
	if !strings.Contains(r.Stderr, "flag provided but not defined: -bad-flag\nUsage:") {
		t.Errorf("got stderr %q", r.Stderr)
	}
}

// -h is not defined and is treated as a bad flag.
func TestDashH(t *testing.T) {
	r := progtest.Run(t, testProgram{}, "-h")
	if r.Exit != 2 {
		t.Errorf("got exit %d, want 2", r.Exit)
	}
	if !strings.Contains(r.Stderr, "flag provided but not defined: -h\nUsage:") {
		t.Errorf("got stderr %q", r.Stderr)
	}
}

func TestHelp(t *testing.T) {
	r := progtest.Run(t, testProgram{}, "-help")
	if r.Exit != 0 {
		t.Errorf("got exit %d, want 0", r.Exit)
	}
	if !strings.Contains(r.Stdout, "Usage: todomvc [flags]") {
		t.Errorf("got stdout %q", r.Stdout)
	}
}

func TestCPUProfile(t *testing.T) {
	prof := filepath.Join(testutil.TempDir(t), "cpuprof")
	progtest.Run(t, testProgram{}, "-cpuprofile", prof)
	// There isn't much to test beyond a sanity check that the profile file
	// now exists.
	if _, err := os.Stat(prof); err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestCPUProfile_BadPath(t *testing.T) {
	r := progtest.Run(t, testProgram{}, "-cpuprofile", "/a/bad/path")
	if !strings.Contains(r.Stderr, "Warning: cannot create CPU profile:") {
		t.Errorf("got stderr %q", r.Stderr)
	}
	if r.Exit != 0 {
		t.Errorf("got exit %d, want 0", r.Exit)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	r := progtest.Run(t, testProgram{notSuitable: true})
	if r.Exit != 2 {
		t.Errorf("got exit %d, want 2", r.Exit)
	}
	if want := "internal error: no suitable subprogram\n"; r.Stderr != want {
		t.Errorf("got stderr %q, want %q", r.Stderr, want)
	}
}

func TestComposite(t *testing.T) {
	r := progtest.Run(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}))
	if r.Stdout != "program 2" {
		t.Errorf("got stdout %q, want %q", r.Stdout, "program 2")
	}
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	r := progtest.Run(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}))
	if r.Exit != 2 {
		t.Errorf("got exit %d, want 2", r.Exit)
	}
	if want := "internal error: no suitable subprogram\n"; r.Stderr != want {
		t.Errorf("got stderr %q, want %q", r.Stderr, want)
	}
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	r := progtest.Run(t,
		Composite(testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}))
	if r.Stdout != "program 1" {
		t.Errorf("got stdout %q, want %q", r.Stdout, "program 1")
	}
}

func TestBadUsageError(t *testing.T) {
	r := progtest.Run(t, testProgram{returnErr: BadUsage("lorem ipsum")})
	if r.Exit != 2 {
		t.Errorf("got exit %d, want 2", r.Exit)
	}
	if !strings.Contains(r.Stderr, "lorem ipsum\nUsage:") {
		t.Errorf("got stderr %q", r.Stderr)
	}
}

func TestExitError(t *testing.T) {
	r := progtest.Run(t, testProgram{returnErr: Exit(3)})
	if r.Exit != 3 {
		t.Errorf("got exit %d, want 3", r.Exit)
	}
	if r.Stderr != "" {
		t.Errorf("got stderr %q, want none", r.Stderr)
	}
}

func TestExitError_0(t *testing.T) {
	r := progtest.Run(t, testProgram{returnErr: Exit(0)})
	if r.Exit != 0 {
		t.Errorf("got exit %d, want 0", r.Exit)
	}
}

func TestFlagsArePassedToTheProgram(t *testing.T) {
	var got Flags
	p := funcProgram(func(fds [3]*os.File, f *Flags, args []string) error {
		got = *f
		return nil
	})
	progtest.Run(t, p, "-db", "/tmp/db", "-sock", "/tmp/sock", "-filter", "active")
	if got.DB != "/tmp/db" || got.Sock != "/tmp/sock" || got.Filter != "active" {
		t.Errorf("got flags %+v", got)
	}
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type funcProgram func(fds [3]*os.File, f *Flags, args []string) error

func (p funcProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	return p(fds, f, args)
}
