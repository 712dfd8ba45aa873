package daemon

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/tpresley/todomvc-cycle/pkg/daemon/daemondefs"
)

var (
	daemonSpawnTimeout = time.Second
	daemonKillTimeout  = time.Second
)

const daemonWaitPerAttempt = 10 * time.Millisecond

type daemonStatus int

const (
	daemonOK daemonStatus = iota
	sockfileMissing
	sockfileOtherError
	notASocket
	connectionRefused
	daemonOutdated
)

const connectionRefusedFmt = "Socket file %s exists but refuses connections. This is likely because the daemon was terminated abnormally. Going to remove the socket file and spawn a new daemon.\n"

// Activate returns a client to the storage daemon, either by connecting to an
// existing daemon or by spawning a new one. It always returns a non-nil
// client, but the client is usable only when the error is nil.
func Activate(stderr io.Writer, spawnCfg *daemondefs.SpawnConfig) (daemondefs.Client, error) {
	sockpath := spawnCfg.SockPath
	cl := NewClient(sockpath)
	status, err := detectDaemon(sockpath, cl)
	shouldSpawn := false

	switch status {
	case daemonOK:
	case sockfileMissing:
		shouldSpawn = true
	case sockfileOtherError:
		return cl, fmt.Errorf("socket file %s inaccessible: %w", sockpath, err)
	case notASocket:
		return cl, fmt.Errorf("%s exists but is not a socket; remove it and retry", sockpath)
	case connectionRefused:
		fmt.Fprintf(stderr, connectionRefusedFmt, sockpath)
		err := os.Remove(sockpath)
		if err != nil {
			return cl, fmt.Errorf("failed to remove socket file: %w", err)
		}
		shouldSpawn = true
	case daemonOutdated:
		fmt.Fprintln(stderr, "Daemon is outdated; going to kill old daemon and spawn a new one.")
		err := killDaemon(sockpath, cl)
		if err != nil {
			return cl, fmt.Errorf("failed to kill old daemon: %w", err)
		}
		shouldSpawn = true
	}

	if !shouldSpawn {
		return cl, nil
	}
	err = spawn(spawnCfg)
	if err != nil {
		return cl, fmt.Errorf("failed to spawn daemon: %w", err)
	}
	logger.Println("spawned daemon")

	// Wait for the new daemon to come online.
	start := time.Now()
	for {
		cl.ResetConn()
		status, err := detectDaemon(sockpath, cl)
		if status == daemonOK {
			return cl, nil
		}
		if time.Since(start) > daemonSpawnTimeout {
			if err != nil {
				return cl, fmt.Errorf("daemon did not come up within %v: %w",
					daemonSpawnTimeout, err)
			}
			return cl, fmt.Errorf("daemon did not come up within %v", daemonSpawnTimeout)
		}
		time.Sleep(daemonWaitPerAttempt)
	}
}

func detectDaemon(sockpath string, cl daemondefs.Client) (daemonStatus, error) {
	fi, err := os.Lstat(sockpath)
	if err != nil {
		if os.IsNotExist(err) {
			return sockfileMissing, err
		}
		return sockfileOtherError, err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return notASocket, nil
	}
	version, err := cl.Version()
	if err != nil {
		return connectionRefused, err
	}
	if version < Version {
		return daemonOutdated, nil
	}
	return daemonOK, nil
}

// killDaemon kills the daemon listening on sockpath and waits for it to
// remove the socket file, so that a new daemon can be spawned right after
// this function returns.
func killDaemon(sockpath string, cl daemondefs.Client) error {
	pid, err := cl.Pid()
	if err != nil {
		return fmt.Errorf("cannot get pid of daemon: %w", err)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("cannot find daemon process (pid=%d): %w", pid, err)
	}
	err = process.Signal(syscall.SIGTERM)
	if err != nil {
		return fmt.Errorf("cannot signal daemon process (pid=%d): %w", pid, err)
	}
	start := time.Now()
	for {
		_, err := os.Lstat(sockpath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if time.Since(start) > daemonKillTimeout {
			return fmt.Errorf("daemon did not exit within %v", daemonKillTimeout)
		}
		time.Sleep(daemonWaitPerAttempt)
	}
}
