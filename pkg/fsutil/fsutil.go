// Package fsutil provides filesystem utilities.
package fsutil

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/tpresley/todomvc-cycle/pkg/env"
)

var pathSep = string(filepath.Separator)

// GetHome finds the home directory of the current user, preferring $HOME when
// it is set.
func GetHome() (string, error) {
	if home := os.Getenv(env.HOME); home != "" {
		return strings.TrimRight(home, pathSep), nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("can't find home directory: %w", err)
	}
	return strings.TrimRight(u.HomeDir, pathSep), nil
}
