// Package output renders hostguard's terminal output: alert lines and
// tables, baseline summaries, and a spinner for long scans. Tables use
// ASCII plus ANSI colors; color is gated on TTY detection and NO_COLOR.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// severityColor maps a severity to its display color.
func severityColor(s guard.Severity) string {
	switch s {
	case guard.SeverityCritical:
		return colorRed
	case guard.SeverityWarning:
		return colorYellow
	default:
		return colorGray
	}
}

// FormatAlert renders one alert as a single log-style line.
func FormatAlert(a guard.Alert) string {
	label := colorize(severityColor(a.Severity), fmt.Sprintf("%-8s", a.Severity))
	return fmt.Sprintf("%s %-18s %s", label, a.Type, a.Message)
}

// RenderAlertTable renders alerts sorted by severity, most severe first.
func RenderAlertTable(alerts []guard.Alert) string {
	if len(alerts) == 0 {
		return "No changes detected.\n"
	}

	sorted := make([]guard.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s %-18s %s\n", "Severity", "Type", "Details"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")
	for _, a := range sorted {
		sb.WriteString(fmt.Sprintf("%s %-18s %s\n",
			colorize(severityColor(a.Severity), fmt.Sprintf("%-8s", a.Severity)),
			a.Type,
			a.Details))
	}
	return sb.String()
}

// RenderSnapshotSummary renders one line of counts for a baseline.
func RenderSnapshotSummary(snap guard.Snapshot) string {
	return fmt.Sprintf("%d apps · %d extensions · %d search providers",
		len(snap.Apps), len(snap.Extensions), len(snap.Search))
}

// FormatStatus renders an orchestrator status transition for live display.
func FormatStatus(st guard.Status) string {
	if st.State == guard.StateError {
		return fmt.Sprintf("[%s] %s", colorize(colorRed, st.State.String()), st.Message)
	}
	return fmt.Sprintf("[%s] %s", st.State, st.Message)
}

// FormatRelativeTime renders t as a rough "how long ago" label.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
