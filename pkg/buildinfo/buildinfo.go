// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X github.com/tpresley/todomvc-cycle/pkg/buildinfo.Var=value"
// to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/tpresley/todomvc-cycle/pkg/must"
	"github.com/tpresley/todomvc-cycle/pkg/prog"
)

// Version identifies the version of todomvc. On development commits, it
// identifies the next release.
const Version = "v0.3.0"

// VersionSuffix is appended to Version in the output of "todomvc -version"
// and "todomvc -buildinfo" to build the full version string. It can be
// overridden when building.
var VersionSuffix = "-dev.unknown"

// Reproducible identifies whether the build is reproducible. It can be
// overridden when building.
var Reproducible = "false"

// FullVersion returns Version with VersionSuffix appended.
func FullVersion() string { return Version + VersionSuffix }

// Program is the buildinfo subprogram, handling -version and -buildinfo.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	switch {
	case f.BuildInfo:
		if f.JSON {
			fmt.Fprintf(fds[1],
				`{"version":%s,"goversion":%s,"reproducible":%v}`+"\n",
				quoteJSON(FullVersion()), quoteJSON(runtime.Version()), Reproducible)
		} else {
			fmt.Fprintln(fds[1], "Version:", FullVersion())
			fmt.Fprintln(fds[1], "Go version:", runtime.Version())
			fmt.Fprintln(fds[1], "Reproducible build:", Reproducible)
		}
	case f.Version:
		if f.JSON {
			fmt.Fprintln(fds[1], quoteJSON(FullVersion()))
		} else {
			fmt.Fprintln(fds[1], FullVersion())
		}
	default:
		return prog.ErrNotSuitable
	}
	return nil
}

func quoteJSON(s string) string { return string(must.OK1(json.Marshal(s))) }
