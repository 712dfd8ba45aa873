//go:build unix

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/tpresley/todomvc-cycle/pkg/env"
)

// RunDir returns a directory suitable for the daemon socket and log files,
// accessible only to the current user. It returns the first directory that
// already exists with exclusive access among the candidates returned by
// runDirPaths, creating the most preferred candidate if none exists.
func RunDir() (string, error) {
	runDirs := runDirPaths()
	for _, runDir := range runDirs {
		if checkExclusiveAccess(runDir) {
			return runDir, nil
		}
	}
	runDir := runDirs[0]
	err := os.MkdirAll(runDir, 0700)
	if err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if !checkExclusiveAccess(runDir) {
		return "", fmt.Errorf("cannot create %v as a secure run directory", runDir)
	}
	return runDir, nil
}

// runDirPaths returns the paths that can be used as the run directory, in
// descending order of preference.
func runDirPaths() []string {
	runDirs := []string{
		filepath.Join(os.TempDir(), fmt.Sprintf("todomvc-%d", os.Getuid())),
	}
	if xdg := os.Getenv(env.XDG_RUNTIME_DIR); xdg != "" {
		runDirs = append([]string{filepath.Join(xdg, "todomvc")}, runDirs...)
	}
	return runDirs
}

func checkExclusiveAccess(runDir string) bool {
	info, err := os.Stat(runDir)
	if err != nil {
		return false
	}
	stat := info.Sys().(*syscall.Stat_t)
	return info.IsDir() && int(stat.Uid) == os.Getuid() && stat.Mode&077 == 0
}
