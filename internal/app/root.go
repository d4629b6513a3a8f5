// Package app wires the hostguard command line: scan, watch, status, and
// config subcommands over the core scan pipeline.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath string

	// RootCmd is the root command for hostguard
	RootCmd = &cobra.Command{
		Use:   "hostguard",
		Short: "Monitor a host for security-relevant changes",
		Long: `hostguard periodically snapshots security-relevant host state (installed
applications, browser extensions, and default search providers), compares
each snapshot against the last known baseline, and forwards alerts for
additions, removals, and changes to a configured HTTP endpoint.

Quick Start:
  1. hostguard scan                 # establish the first baseline
  2. hostguard config set alert_endpoint https://your-endpoint
  3. hostguard watch --daemon       # keep scanning in the background

Examples:
  # Run one scan and exit
  hostguard scan

  # Scan continuously every hour
  hostguard watch --interval 1h

  # Check daemon and baseline status
  hostguard status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := getDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("hostguard: host change monitoring with alert delivery")
				fmt.Println()
				fmt.Println("Run 'hostguard scan' to establish a baseline.")
				fmt.Println("Run 'hostguard --help' for the full reference.")
			} else {
				fmt.Println("hostguard: host change monitoring with alert delivery")
				fmt.Println()
				fmt.Println("Tip: Run 'hostguard status' to check the baseline and daemon.")
				fmt.Println("     Run 'hostguard scan' to scan now.")
				fmt.Println("     Run 'hostguard --help' for all commands.")
			}
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.hostguard/hostguard.db)")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDataDir returns ~/.hostguard, creating it if needed.
func getDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dataDir := filepath.Join(home, ".hostguard")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create hostguard directory: %w", err)
	}
	return dataDir, nil
}

// getDBPath returns the database path, using the flag value or default.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "hostguard.db"), nil
}

// getDefaultPIDFile returns the default PID file path.
func getDefaultPIDFile() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path.
func getDefaultLogFile() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "watch.log"), nil
}
