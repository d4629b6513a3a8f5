package app

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hostguard/internal/alert"
	"github.com/blackwell-systems/hostguard/internal/collector"
	"github.com/blackwell-systems/hostguard/internal/guard"
	"github.com/blackwell-systems/hostguard/internal/output"
)

var (
	scanEndpoint string
	scanQuiet    bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle and exit",
		Long: `Run exactly one scan cycle: collect the host's installed applications,
browser extensions, and default search providers, compare them against the
stored baseline, deliver an alert for every difference, and commit the new
baseline.

The first scan establishes the baseline and reports no changes. A failed
collector source or unreachable alert endpoint degrades the scan, it does
not fail it; the exit status is non-zero only when the scan itself could
not complete (for example, the baseline could not be committed).`,
		Example: `  # Run one scan
  hostguard scan

  # Deliver alerts to an explicit endpoint for this run only
  hostguard scan --endpoint https://example.org/hooks/hostguard

  # Scan quietly (suppress output)
  hostguard scan --quiet`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().StringVar(&scanEndpoint, "endpoint", "", "alert endpoint URL (overrides stored config)")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "suppress output")
}

func runScan(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	endpoint, err := resolveEndpoint(st, scanEndpoint)
	if err != nil {
		return fmt.Errorf("failed to resolve alert endpoint: %w", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	sink := alert.NewSink(endpoint, logger)
	recorder := &recordingSink{next: sink}
	orch := guard.New(collector.New(), st, recorder, logger)

	prior, err := st.LoadCurrent()
	if err != nil {
		return fmt.Errorf("failed to read baseline: %w", err)
	}
	firstRun := prior.IsEmpty()

	isTTY := isatty.IsTerminal(os.Stdout.Fd())
	var spinner *output.Spinner
	if !scanQuiet && isTTY {
		spinner = output.NewSpinner("Scanning host state...")
		spinner.Start()

		updates := orch.Subscribe()
		go func() {
			for st := range updates {
				spinner.SetMessage(st.Message)
			}
		}()
	}

	status := orch.RunScan(cmd.Context())

	if spinner != nil {
		spinner.Stop()
	}

	if status.State == guard.StateError {
		return fmt.Errorf("scan failed: %s", status.Message)
	}

	if scanQuiet {
		return nil
	}

	current, err := st.LoadCurrent()
	if err == nil {
		fmt.Printf("Baseline: %s\n", output.RenderSnapshotSummary(current))
	}

	if firstRun {
		fmt.Println("First scan complete: baseline established, no comparison possible yet.")
	} else {
		fmt.Println()
		fmt.Print(output.RenderAlertTable(recorder.recorded()))
	}

	if !sink.Configured() {
		fmt.Println()
		fmt.Println("⚠ No alert endpoint configured; alerts were not delivered.")
		fmt.Println("  Set one with: hostguard config set alert_endpoint <url>")
	}
	return nil
}
