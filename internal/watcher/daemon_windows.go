//go:build windows

package watcher

import (
	"errors"
	"os"
)

// Daemonizing via fork+setsid is a Unix construct. On Windows, run
// `hostguard watch` under the Task Scheduler instead.

var errNoDaemon = errors.New("daemon mode is not supported on Windows; schedule 'hostguard watch' with the Task Scheduler")

func StartDaemon(pidFile, logFile string, extraArgs ...string) error {
	return errNoDaemon
}

func StopDaemon(pidFile string) error {
	return errNoDaemon
}

func IsDaemonRunning(pidFile string) (bool, error) {
	return false, nil
}

func RemovePIDFile(pidFile string) error {
	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
