//go:build unix

package daemon

import (
	"os"
	"syscall"
)

func procAttrForSpawn(files []*os.File) *os.ProcAttr {
	return &os.ProcAttr{
		Dir:   "/",        // cd to /
		Env:   []string{}, // empty environment
		Files: files,
		Sys: &syscall.SysProcAttr{
			Setsid: true, // detach from current terminal
		},
	}
}
