// Package guard implements the core scan pipeline: entity types, the
// snapshot diff engine, and the orchestrator that sequences collection,
// diffing, alert dispatch, and baseline persistence.
package guard

import (
	"context"
	"fmt"
)

// BrowserType identifies a supported browser family.
type BrowserType string

const (
	BrowserChrome  BrowserType = "CHROME"
	BrowserFirefox BrowserType = "FIREFOX"
	BrowserEdge    BrowserType = "EDGE"
	BrowserSafari  BrowserType = "SAFARI"
)

// AllBrowsers returns every browser the scan cycle inspects.
func AllBrowsers() []BrowserType {
	return []BrowserType{BrowserChrome, BrowserFirefox, BrowserEdge, BrowserSafari}
}

// AlertType classifies what kind of change an alert describes.
type AlertType string

const (
	AlertAppAdded         AlertType = "APP_ADDED"
	AlertAppRemoved       AlertType = "APP_REMOVED"
	AlertAppUpdated       AlertType = "APP_UPDATED"
	AlertExtensionAdded   AlertType = "EXTENSION_ADDED"
	AlertExtensionRemoved AlertType = "EXTENSION_REMOVED"
	AlertSearchChanged    AlertType = "SEARCH_CHANGED"
)

// Severity is the ordinal risk classification of an alert.
// INFO < WARNING < CRITICAL.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// MarshalJSON encodes the severity as its wire label ("INFO", "WARNING",
// "CRITICAL") rather than its ordinal.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// AppInfo describes one installed application. Name is the natural key
// within a snapshot. InstallDate is epoch milliseconds and advisory only.
type AppInfo struct {
	Name        string
	Version     string
	InstallDate int64
}

// ExtensionInfo describes one browser extension. The natural key is
// (Browser, ID): the same id under two browsers is two distinct entities.
type ExtensionInfo struct {
	ID      string
	Name    string
	Browser BrowserType
}

// ExtensionKey is the composite natural key for an extension.
type ExtensionKey struct {
	Browser BrowserType
	ID      string
}

// Key returns the extension's composite natural key.
func (e ExtensionInfo) Key() ExtensionKey {
	return ExtensionKey{Browser: e.Browser, ID: e.ID}
}

// SearchProviderInfo describes a browser's active default search provider.
// Browser is the natural key; URL is the compared field.
type SearchProviderInfo struct {
	Browser BrowserType
	Name    string
	URL     string
}

// Snapshot is the complete host state observed in one scan. It is built
// once by the orchestrator and never mutated afterwards.
type Snapshot struct {
	Apps       []AppInfo
	Extensions []ExtensionInfo
	Search     map[BrowserType]SearchProviderInfo
}

// IsEmpty reports whether the snapshot contains no entities at all, as on
// a first run before any baseline has been committed.
func (s Snapshot) IsEmpty() bool {
	return len(s.Apps) == 0 && len(s.Extensions) == 0 && len(s.Search) == 0
}

// Alert describes one detected change. Alerts are immutable once built
// and carry no reference to the snapshots that produced them. Timestamp
// is epoch milliseconds, assigned once by the diff engine's clock.
type Alert struct {
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Timestamp int64     `json:"timestamp"`
}

// Collector is the per-platform source of raw host state, normalized to
// the core entity types. An implementation must distinguish "genuinely
// nothing found" (nil error, empty result) from "source unreadable this
// cycle" (non-nil error): the orchestrator suppresses diffing for a
// failed source instead of treating it as a mass removal.
type Collector interface {
	InstalledApps(ctx context.Context) ([]AppInfo, error)
	BrowserExtensions(ctx context.Context, browser BrowserType) ([]ExtensionInfo, error)
	DefaultSearch(ctx context.Context, browser BrowserType) (*SearchProviderInfo, error)
}

// SnapshotStore is durable baseline storage. Replace must be atomic: a
// reader never observes a state where some entity collections reflect the
// old snapshot and others the new one.
type SnapshotStore interface {
	LoadCurrent() (Snapshot, error)
	Replace(Snapshot) error
}

// AlertSink delivers one alert, best effort. A delivery failure must
// never affect the caller's control flow or the scan outcome.
type AlertSink interface {
	Send(ctx context.Context, alert Alert) error
}
