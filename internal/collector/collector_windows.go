//go:build windows

package collector

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// windowsCollector enumerates the Uninstall registry keys for installed
// applications and reads Chrome/Edge profile Preferences files under
// %LOCALAPPDATA%.
type windowsCollector struct{}

func newPlatform() guard.Collector {
	return &windowsCollector{}
}

var uninstallKeyPaths = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// InstalledApps walks HKLM and HKCU Uninstall keys. Individual keys
// without a DisplayName (patches, stubs) are skipped; access-denied
// subtrees are skipped rather than failing the whole inventory.
func (c *windowsCollector) InstalledApps(ctx context.Context) ([]guard.AppInfo, error) {
	var apps []guard.AppInfo
	var opened bool

	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		for _, keyPath := range uninstallKeyPaths {
			key, err := registry.OpenKey(root, keyPath, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			opened = true

			subNames, err := key.ReadSubKeyNames(-1)
			if err != nil {
				key.Close()
				continue
			}
			for _, subName := range subNames {
				sub, err := registry.OpenKey(root, keyPath+`\`+subName, registry.QUERY_VALUE)
				if err != nil {
					continue
				}
				name, _, err := sub.GetStringValue("DisplayName")
				if err != nil || name == "" {
					sub.Close()
					continue
				}
				version, _, _ := sub.GetStringValue("DisplayVersion")
				sub.Close()

				apps = append(apps, guard.AppInfo{Name: name, Version: version})
			}
			key.Close()
		}
	}

	if !opened {
		return nil, os.ErrPermission
	}
	return apps, nil
}

func (c *windowsCollector) BrowserExtensions(ctx context.Context, browser guard.BrowserType) ([]guard.ExtensionInfo, error) {
	path := preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	extensions, _, err := readPreferences(path, browser)
	return extensions, err
}

func (c *windowsCollector) DefaultSearch(ctx context.Context, browser guard.BrowserType) (*guard.SearchProviderInfo, error) {
	path := preferencesPath(browser)
	if path == "" {
		return nil, nil
	}
	_, search, err := readPreferences(path, browser)
	return search, err
}

func preferencesPath(browser guard.BrowserType) string {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return ""
	}
	switch browser {
	case guard.BrowserChrome:
		return firstExisting([]string{
			filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default", "Preferences"),
		})
	case guard.BrowserEdge:
		return firstExisting([]string{
			filepath.Join(localAppData, "Microsoft", "Edge", "User Data", "Default", "Preferences"),
		})
	default:
		return ""
	}
}
