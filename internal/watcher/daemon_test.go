//go:build !windows

package watcher

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestIsDaemonRunning_NoPIDFile(t *testing.T) {
	running, err := IsDaemonRunning(filepath.Join(t.TempDir(), "missing.pid"))
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if running {
		t.Error("missing PID file should mean not running")
	}
}

func TestIsDaemonRunning_GarbagePIDFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if running {
		t.Error("unparseable PID file should mean not running")
	}
}

func TestIsDaemonRunning_OwnPID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if !running {
		t.Error("our own PID should count as running")
	}
}

func TestRemovePIDFile_MissingIsFine(t *testing.T) {
	if err := RemovePIDFile(filepath.Join(t.TempDir(), "missing.pid")); err != nil {
		t.Errorf("RemovePIDFile() on missing file = %v, want nil", err)
	}
}

func TestStopDaemon_NoPIDFile(t *testing.T) {
	if err := StopDaemon(filepath.Join(t.TempDir(), "missing.pid")); err == nil {
		t.Error("StopDaemon() without a PID file should fail")
	}
}

