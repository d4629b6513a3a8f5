//go:build !windows && !darwin

package collector

import (
	"context"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// linuxCollector reads Chrome/Chromium preference files under
// ~/.config. It is also the fallback for platforms without a dedicated
// implementation.
type linuxCollector struct {
	home string
}

func newPlatform() guard.Collector {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &linuxCollector{home: home}
}

// InstalledApps returns nothing on Linux: application tracking is
// intentionally disabled here, so app diffs never fire on this platform.
func (c *linuxCollector) InstalledApps(ctx context.Context) ([]guard.AppInfo, error) {
	return nil, nil
}

func (c *linuxCollector) BrowserExtensions(ctx context.Context, browser guard.BrowserType) ([]guard.ExtensionInfo, error) {
	path := c.preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	extensions, _, err := readPreferences(path, browser)
	return extensions, err
}

func (c *linuxCollector) DefaultSearch(ctx context.Context, browser guard.BrowserType) (*guard.SearchProviderInfo, error) {
	path := c.preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	_, search, err := readPreferences(path, browser)
	return search, err
}

// preferencesPath returns the profile Preferences file for browser, or
// "" when the browser has no profile on this host.
func (c *linuxCollector) preferencesPath(browser guard.BrowserType) string {
	if c.home == "" || browser != guard.BrowserChrome {
		return ""
	}
	return firstExisting([]string{
		filepath.Join(c.home, ".config", "google-chrome", "Default", "Preferences"),
		filepath.Join(c.home, ".config", "chromium", "Default", "Preferences"),
	})
}
