package app

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hostguard/internal/alert"
	"github.com/blackwell-systems/hostguard/internal/output"
	"github.com/blackwell-systems/hostguard/internal/store"
	"github.com/blackwell-systems/hostguard/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon, baseline, and endpoint status",
	Long: `Display the watch daemon state, the stored baseline's contents, and the
configured alert endpoint.

Shows:
  • Host identity
  • Daemon running status
  • Baseline entity counts and age
  • Alert endpoint configuration`,
	Example: `  # Check status
  hostguard status`,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}
	path, err := getDBPath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}

	const label = "%-12s"
	fmt.Println()

	if info, err := host.Info(); err == nil {
		fmt.Printf(label+"%s (%s %s, up %s)\n", "Host:",
			info.Hostname, info.Platform, info.PlatformVersion,
			(time.Duration(info.Uptime) * time.Second).String())
	}

	daemonRunning, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if daemonRunning {
		fmt.Printf(label+"running\n", "Daemon:")
	} else {
		fmt.Printf(label+"stopped  (run 'hostguard watch --daemon')\n", "Daemon:")
	}

	fi, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		fmt.Printf(label+"none  (run 'hostguard scan' to establish one)\n", "Baseline:")
		fmt.Println()
		return nil
	}

	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	snap, err := st.LoadCurrent()
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	// The DB mtime moves when a scan commits, so it doubles as a
	// last-scan proxy across processes.
	lastScan := "unknown"
	if statErr == nil {
		lastScan = output.FormatRelativeTime(fi.ModTime())
	}
	fmt.Printf(label+"%s · last scan %s\n", "Baseline:", output.RenderSnapshotSummary(snap), lastScan)

	endpoint, ok, err := st.GetConfig(alert.EndpointConfigKey)
	if err != nil {
		return fmt.Errorf("failed to read endpoint config: %w", err)
	}
	if !ok || endpoint == "" || endpoint == alert.PlaceholderEndpoint {
		fmt.Printf(label+"not configured  (run 'hostguard config set alert_endpoint <url>')\n", "Endpoint:")
	} else {
		fmt.Printf(label+"%s\n", "Endpoint:", endpoint)
	}

	fmt.Println()
	return nil
}
