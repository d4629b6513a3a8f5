package guard

import "fmt"

// DiffEngine compares two snapshots and produces alerts for every
// addition, removal, and change. It performs no I/O and holds no state
// beyond its clock, so comparing a snapshot to itself always yields nil.
//
// Callers must treat the returned alerts as an unordered multiset.
type DiffEngine struct {
	now func() int64 // epoch milliseconds
}

// NewDiffEngine returns a DiffEngine stamping alerts with the given
// clock. All alert timestamps for a scan come from this one source.
func NewDiffEngine(now func() int64) *DiffEngine {
	return &DiffEngine{now: now}
}

// Diff compares two whole snapshots.
func (e *DiffEngine) Diff(old, current Snapshot) []Alert {
	var alerts []Alert
	alerts = append(alerts, e.DiffApps(old.Apps, current.Apps)...)
	alerts = append(alerts, e.DiffExtensions(old.Extensions, current.Extensions)...)
	alerts = append(alerts, e.DiffSearch(old.Search, current.Search)...)
	return alerts
}

// DiffApps keys applications by name. An app present on both sides with a
// differing version yields APP_UPDATED; identical entries yield nothing.
func (e *DiffEngine) DiffApps(old, current []AppInfo) []Alert {
	oldByName := make(map[string]AppInfo, len(old))
	for _, app := range old {
		oldByName[app.Name] = app
	}
	currentByName := make(map[string]AppInfo, len(current))
	for _, app := range current {
		currentByName[app.Name] = app
	}

	var alerts []Alert
	for _, app := range current {
		prev, existed := oldByName[app.Name]
		switch {
		case !existed:
			alerts = append(alerts, Alert{
				Type:      AlertAppAdded,
				Severity:  SeverityInfo,
				Message:   fmt.Sprintf("New application installed: %s", app.Name),
				Details:   fmt.Sprintf("%s (version %s)", app.Name, versionLabel(app.Version)),
				Timestamp: e.now(),
			})
		case prev.Version != app.Version:
			alerts = append(alerts, Alert{
				Type:      AlertAppUpdated,
				Severity:  SeverityInfo,
				Message:   fmt.Sprintf("Application updated: %s", app.Name),
				Details:   fmt.Sprintf("%s version %s -> %s", app.Name, versionLabel(prev.Version), versionLabel(app.Version)),
				Timestamp: e.now(),
			})
		}
	}
	for _, app := range old {
		if _, exists := currentByName[app.Name]; !exists {
			alerts = append(alerts, Alert{
				Type:      AlertAppRemoved,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("Application removed: %s", app.Name),
				Details:   fmt.Sprintf("%s (version %s)", app.Name, versionLabel(app.Version)),
				Timestamp: e.now(),
			})
		}
	}
	return alerts
}

// DiffExtensions keys extensions strictly on (browser, id): the same id
// appearing under two browsers is never matched as one entity.
func (e *DiffEngine) DiffExtensions(old, current []ExtensionInfo) []Alert {
	oldByKey := make(map[ExtensionKey]ExtensionInfo, len(old))
	for _, ext := range old {
		oldByKey[ext.Key()] = ext
	}
	currentByKey := make(map[ExtensionKey]ExtensionInfo, len(current))
	for _, ext := range current {
		currentByKey[ext.Key()] = ext
	}

	var alerts []Alert
	for _, ext := range current {
		if _, existed := oldByKey[ext.Key()]; !existed {
			alerts = append(alerts, Alert{
				Type:      AlertExtensionAdded,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("New extension added to %s: %s", ext.Browser, ext.Name),
				Details:   fmt.Sprintf("%s extension %q (%s)", ext.Browser, ext.Name, ext.ID),
				Timestamp: e.now(),
			})
		}
	}
	for _, ext := range old {
		if _, exists := currentByKey[ext.Key()]; !exists {
			alerts = append(alerts, Alert{
				Type:      AlertExtensionRemoved,
				Severity:  SeverityInfo,
				Message:   fmt.Sprintf("Extension removed from %s: %s", ext.Browser, ext.Name),
				Details:   fmt.Sprintf("%s extension %q (%s)", ext.Browser, ext.Name, ext.ID),
				Timestamp: e.now(),
			})
		}
	}
	return alerts
}

// DiffSearch emits SEARCH_CHANGED only when a browser has a provider on
// both sides and the URLs differ. Absence on either side is not a change:
// a change requires an old and a new value to compare.
func (e *DiffEngine) DiffSearch(old, current map[BrowserType]SearchProviderInfo) []Alert {
	var alerts []Alert
	for browser, cur := range current {
		prev, existed := old[browser]
		if !existed || prev.URL == cur.URL {
			continue
		}
		alerts = append(alerts, Alert{
			Type:     AlertSearchChanged,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Default search provider changed in %s", browser),
			Details: fmt.Sprintf("%s search provider changed from %s (%s) to %s (%s)",
				browser, providerLabel(prev), prev.URL, providerLabel(cur), cur.URL),
			Timestamp: e.now(),
		})
	}
	return alerts
}

func versionLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func providerLabel(p SearchProviderInfo) string {
	if p.Name == "" {
		return "unnamed"
	}
	return p.Name
}
