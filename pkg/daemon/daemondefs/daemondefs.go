// Package daemondefs contains definitions used for the daemon.
//
// It is a separate package so that packages that only depend on the daemon
// API does not need to depend on the concrete implementation.
package daemondefs

import "github.com/tpresley/todomvc-cycle/pkg/store/storedefs"

// Client is a client to the storage daemon.
type Client interface {
	storedefs.Store

	// ResetConn closes the current connection, if any. The next request will
	// dial the socket again.
	ResetConn() error

	// SockPath returns the socket path the client talks to.
	SockPath() string
	// Version returns the API version of the daemon.
	Version() (int, error)
	// Pid returns the process ID of the daemon.
	Pid() (int, error)
}

// SpawnConfig keeps configurations for spawning the daemon.
type SpawnConfig struct {
	// BinPath is the path to the binary itself, used when forking. If empty,
	// it is automatically determined with os.Executable.
	BinPath string
	// DbPath is the path to the database.
	DbPath string
	// SockPath is the path to the socket on which the daemon will serve
	// requests.
	SockPath string
	// RunDir is the directory in which to place the daemon log file.
	RunDir string
}
