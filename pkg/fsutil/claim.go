package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrClaimFileBadPattern is returned by ClaimFile when the pattern does not
// contain exactly one asterisk.
var ErrClaimFileBadPattern = errors.New("pattern must contain exactly one asterisk")

// ClaimFile takes a directory and a pattern string containing exactly one
// asterisk (e.g. "daemon-*.log"). It opens a file in that directory, with a
// filename matching the pattern, with "*" replaced by a number. That number is
// one plus the largest of all existing files matching the pattern, or 1 if no
// file matches the pattern.
//
// The file is opened for read and write, with permission 0666 (before umask).
//
// For example, if the directory /run/todomvc contains daemon-1.log and
// daemon-2.log, ClaimFile("/run/todomvc", "daemon-*.log") will open
// /run/todomvc/daemon-3.log.
func ClaimFile(dir, pattern string) (*os.File, error) {
	if strings.Count(pattern, "*") != 1 {
		return nil, ErrClaimFileBadPattern
	}
	asterisk := strings.IndexByte(pattern, '*')
	prefix, suffix := pattern[:asterisk], pattern[asterisk+1:]
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	max := 0
	for _, file := range files {
		name := file.Name()
		if len(name) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			core := name[len(prefix) : len(name)-len(suffix)]
			if coreNum, err := strconv.Atoi(core); err == nil && coreNum > max {
				max = coreNum
			}
		}
	}

	for i := max + 1; ; i++ {
		name := filepath.Join(dir, prefix+strconv.Itoa(i)+suffix)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
	}
}
