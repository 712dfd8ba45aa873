package testutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. It is different from testing.TB.TempDir in that it
// resolves symlinks in the path of the directory.
//
// It panics if the test directory cannot be created or symlinks cannot be
// resolved. It is only suitable for use in tests.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "todomvc-test.")
	if err != nil {
		panic(fmt.Sprintf("create temp dir: %v", err))
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(fmt.Sprintf("resolve symlinks of temp dir: %v", err))
	}
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
