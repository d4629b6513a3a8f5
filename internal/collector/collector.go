// Package collector provides the per-platform guard.Collector
// implementations: installed application inventory, browser extension
// lists, and default search providers.
//
// Every implementation follows the same contract: a source that simply
// has nothing (no browser installed, no profile yet) yields an empty
// result with a nil error, while a source that exists but cannot be read
// or parsed this cycle yields an error so the orchestrator can skip it
// instead of reporting a mass removal.
package collector

import "github.com/blackwell-systems/hostguard/internal/guard"

// New returns the Collector for the host platform. Selection happens at
// build time via the platform-specific newPlatform definitions; hosts
// without a dedicated implementation fall back to the Linux one.
func New() guard.Collector {
	return newPlatform()
}
