package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

func TestFormatAlert(t *testing.T) {
	line := FormatAlert(guard.Alert{
		Type:     guard.AlertExtensionAdded,
		Severity: guard.SeverityWarning,
		Message:  "New extension added to CHROME: Shady",
	})
	for _, want := range []string{"WARNING", "EXTENSION_ADDED", "Shady"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatAlert() = %q, should contain %q", line, want)
		}
	}
}

func TestRenderAlertTable_Empty(t *testing.T) {
	if got := RenderAlertTable(nil); !strings.Contains(got, "No changes") {
		t.Errorf("RenderAlertTable(nil) = %q", got)
	}
}

func TestRenderAlertTable_SortsBySeverity(t *testing.T) {
	table := RenderAlertTable([]guard.Alert{
		{Type: guard.AlertAppAdded, Severity: guard.SeverityInfo, Details: "info-line"},
		{Type: guard.AlertSearchChanged, Severity: guard.SeverityCritical, Details: "critical-line"},
		{Type: guard.AlertExtensionAdded, Severity: guard.SeverityWarning, Details: "warning-line"},
	})

	critical := strings.Index(table, "critical-line")
	warning := strings.Index(table, "warning-line")
	info := strings.Index(table, "info-line")
	if critical == -1 || warning == -1 || info == -1 {
		t.Fatalf("table missing rows:\n%s", table)
	}
	if !(critical < warning && warning < info) {
		t.Errorf("rows not ordered most-severe-first:\n%s", table)
	}
}

func TestRenderSnapshotSummary(t *testing.T) {
	got := RenderSnapshotSummary(guard.Snapshot{
		Apps:       []guard.AppInfo{{Name: "A"}},
		Extensions: []guard.ExtensionInfo{{ID: "x"}, {ID: "y"}},
	})
	if !strings.Contains(got, "1 apps") || !strings.Contains(got, "2 extensions") || !strings.Contains(got, "0 search") {
		t.Errorf("RenderSnapshotSummary() = %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{time.Now().Add(-10 * time.Second), "just now"},
		{time.Now().Add(-5 * time.Minute), "5m ago"},
		{time.Now().Add(-3 * time.Hour), "3h ago"},
		{time.Now().Add(-49 * time.Hour), "2d ago"},
	}
	for _, tc := range cases {
		if got := FormatRelativeTime(tc.t); got != tc.want {
			t.Errorf("FormatRelativeTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
