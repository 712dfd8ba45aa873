//go:build unix

package daemon

import "golang.org/x/sys/unix"

// The daemon creates the database and the socket file. Keep them only
// accessible to the user.
func setUmaskForDaemon() {
	unix.Umask(0077)
}
