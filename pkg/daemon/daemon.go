// Package daemon implements a service for mediating access to the data
// store, and its client.
//
// The daemon is a JSON-RPC server listening on a local Unix domain socket.
// Most RPCs it exposes correspond to methods of the Store interface in the
// storedefs package and are not documented here.
package daemon

import (
	"os"

	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/prog"
)

var logger = logutil.GetLogger("[daemon] ")

// Program is the daemon subprogram.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.Daemon {
		return prog.ErrNotSuitable
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -daemon")
	}
	if f.DB == "" || f.Sock == "" {
		return prog.BadUsage("both -db and -sock are required with -daemon")
	}
	setUmaskForDaemon()
	exit := Serve(f.Sock, f.DB, ServeOpts{})
	return prog.Exit(exit)
}
