package testutil

import (
	"os"

	"github.com/tpresley/todomvc-cycle/pkg/must"
)

// InTempDir is like Chdir(c, TempDir(c)).
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working directory
// when a test finishes. It returns the directory for easier chaining.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() {
		must.OK(os.Chdir(oldWd))
	})
	return dir
}
