// Todomvc is a terminal rendition of the TodoMVC application. It keeps a
// list of todo items that can be added, edited, completed and filtered, and
// persists them across runs, optionally through a storage daemon shared by
// concurrent instances.
package main

import (
	"os"

	"github.com/tpresley/todomvc-cycle/pkg/buildinfo"
	"github.com/tpresley/todomvc-cycle/pkg/daemon"
	"github.com/tpresley/todomvc-cycle/pkg/prog"
	"github.com/tpresley/todomvc-cycle/pkg/todomvc"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, daemon.Program, todomvc.Program)))
}
