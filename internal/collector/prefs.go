package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// Chromium-family browsers (Chrome, Chromium, Edge) share one JSON
// Preferences layout. Only the two sections we consume are modeled;
// everything else in the file is ignored.
type chromePreferences struct {
	Extensions *struct {
		Settings map[string]extensionSetting `json:"settings"`
	} `json:"extensions"`
	DefaultSearchProvider *struct {
		Data *struct {
			TemplateURLData *templateURLData `json:"template_url_data"`
		} `json:"data"`
	} `json:"default_search_provider"`
}

type extensionSetting struct {
	Manifest *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"manifest"`
}

type templateURLData struct {
	ShortName string `json:"short_name"`
	URL       string `json:"url"`
}

// parsePreferences extracts extension records and the default search
// provider from a Chromium Preferences blob. Entries without a manifest
// name (component stubs, partially written settings) are skipped.
func parsePreferences(data []byte, browser guard.BrowserType) ([]guard.ExtensionInfo, *guard.SearchProviderInfo, error) {
	var prefs chromePreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s preferences: %w", browser, err)
	}

	var extensions []guard.ExtensionInfo
	if prefs.Extensions != nil {
		for id, setting := range prefs.Extensions.Settings {
			if setting.Manifest == nil || setting.Manifest.Name == "" {
				continue
			}
			extensions = append(extensions, guard.ExtensionInfo{
				ID:      id,
				Name:    setting.Manifest.Name,
				Browser: browser,
			})
		}
		// Settings is a map; sort for stable logs and table output.
		sort.Slice(extensions, func(i, j int) bool {
			return extensions[i].ID < extensions[j].ID
		})
	}

	var search *guard.SearchProviderInfo
	if prefs.DefaultSearchProvider != nil && prefs.DefaultSearchProvider.Data != nil {
		if data := prefs.DefaultSearchProvider.Data.TemplateURLData; data != nil && data.URL != "" {
			search = &guard.SearchProviderInfo{
				Browser: browser,
				Name:    data.ShortName,
				URL:     data.URL,
			}
		}
	}

	return extensions, search, nil
}

// readPreferences loads and parses the Preferences file at path. A
// missing file means the browser or profile is simply absent: that is a
// genuine empty, not a failure.
func readPreferences(path string, browser guard.BrowserType) ([]guard.ExtensionInfo, *guard.SearchProviderInfo, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s preferences: %w", browser, err)
	}
	return parsePreferences(data, browser)
}

// firstExisting returns the first path that exists, or "".
func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
