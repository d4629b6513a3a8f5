package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hostguard/internal/alert"
	"github.com/blackwell-systems/hostguard/internal/collector"
	"github.com/blackwell-systems/hostguard/internal/guard"
	"github.com/blackwell-systems/hostguard/internal/output"
	"github.com/blackwell-systems/hostguard/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchInterval    time.Duration
	watchEndpoint    string
	watchPIDFile     string
	watchLogFile     string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Scan continuously on an interval",
		Long: `Keep scanning the host on a fixed interval, with live status output.

Changes to watched browser profile directories and application folders
trigger an early scan; detection itself always goes through the normal
baseline comparison, so a burst of filesystem noise costs at most one
extra scan cycle.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a background process
  • Stop: stop a running daemon`,
		Example: `  # Scan every hour in the foreground
  hostguard watch

  # Scan every 10 minutes as a background daemon
  hostguard watch --daemon --interval 10m

  # Stop the daemon
  hostguard watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "time between scans")
	watchCmd.Flags().StringVar(&watchEndpoint, "endpoint", "", "alert endpoint URL (overrides stored config)")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.hostguard/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.hostguard/watch.log)")

	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		if err := watcher.StopDaemon(watchPIDFile); err != nil {
			return err
		}
		fmt.Println("✓ Daemon stopped")
		return nil
	}

	if watchDaemon {
		extra := []string{"--interval", watchInterval.String()}
		if watchEndpoint != "" {
			extra = append(extra, "--endpoint", watchEndpoint)
		}
		if dbPath != "" {
			extra = append(extra, "--db", dbPath)
		}
		if err := watcher.StartDaemon(watchPIDFile, watchLogFile, extra...); err != nil {
			return err
		}
		fmt.Printf("✓ Daemon started (log: %s)\n", watchLogFile)
		return nil
	}

	return runWatchLoop()
}

// runWatchLoop is the foreground and daemon-child scan loop.
func runWatchLoop() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	endpoint, err := resolveEndpoint(st, watchEndpoint)
	if err != nil {
		return fmt.Errorf("failed to resolve alert endpoint: %w", err)
	}

	// In daemon mode stdout/stderr are already redirected to the log file.
	logger := log.New(os.Stderr, "", log.LstdFlags)
	logHostIdentity(logger)

	sink := alert.NewSink(endpoint, logger)
	if !sink.Configured() {
		logger.Printf("no alert endpoint configured; changes will be logged but not delivered")
	}

	orch := guard.New(collector.New(), st, sink, logger)

	// Live status: print every state transition.
	updates := orch.Subscribe()
	go func() {
		for status := range updates {
			fmt.Println(output.FormatStatus(status))
		}
	}()

	w, err := watcher.New(orch, watchInterval, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	sig := <-sigCh
	logger.Printf("received signal %v, shutting down", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	if watchDaemonChild {
		return watcher.RemovePIDFile(watchPIDFile)
	}
	return nil
}

// logHostIdentity records what machine this watch loop is guarding.
func logHostIdentity(logger *log.Logger) {
	info, err := host.Info()
	if err != nil {
		return
	}
	logger.Printf("guarding host %s (%s %s, up %s)",
		info.Hostname, info.Platform, info.PlatformVersion,
		(time.Duration(info.Uptime) * time.Second).String())
}
