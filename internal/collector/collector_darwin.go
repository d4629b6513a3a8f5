//go:build darwin

package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// darwinCollector walks the /Applications folders for .app bundles and
// reads Chrome's profile Preferences file.
type darwinCollector struct {
	home string
}

func newPlatform() guard.Collector {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &darwinCollector{home: home}
}

// InstalledApps lists .app bundles in /Applications and ~/Applications,
// one level of subfolders deep (matches Finder's grouping convention).
// App bundles carry no version here; the bundle name is the identity.
func (c *darwinCollector) InstalledApps(ctx context.Context) ([]guard.AppInfo, error) {
	roots := []string{"/Applications"}
	if c.home != "" {
		roots = append(roots, filepath.Join(c.home, "Applications"))
	}

	var apps []guard.AppInfo
	var firstErr error
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) && firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, entry := range entries {
			if app, ok := bundleName(entry.Name()); ok {
				apps = append(apps, guard.AppInfo{Name: app})
				continue
			}
			if !entry.IsDir() {
				continue
			}
			subEntries, err := os.ReadDir(filepath.Join(root, entry.Name()))
			if err != nil {
				continue
			}
			for _, sub := range subEntries {
				if app, ok := bundleName(sub.Name()); ok {
					apps = append(apps, guard.AppInfo{Name: app})
				}
			}
		}
	}

	// Only report failure when it left us with nothing to show.
	if len(apps) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return apps, nil
}

func bundleName(entry string) (string, bool) {
	if !strings.HasSuffix(entry, ".app") {
		return "", false
	}
	return strings.TrimSuffix(entry, ".app"), true
}

func (c *darwinCollector) BrowserExtensions(ctx context.Context, browser guard.BrowserType) ([]guard.ExtensionInfo, error) {
	path := c.preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	extensions, _, err := readPreferences(path, browser)
	return extensions, err
}

func (c *darwinCollector) DefaultSearch(ctx context.Context, browser guard.BrowserType) (*guard.SearchProviderInfo, error) {
	path := c.preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	_, search, err := readPreferences(path, browser)
	return search, err
}

func (c *darwinCollector) preferencesPath(browser guard.BrowserType) string {
	if c.home == "" || browser != guard.BrowserChrome {
		return ""
	}
	return firstExisting([]string{
		filepath.Join(c.home, "Library", "Application Support", "Google", "Chrome", "Default", "Preferences"),
	})
}
