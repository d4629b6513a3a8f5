package store

import (
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// Snapshot operations

// LoadCurrent returns the last committed snapshot. A fresh database (no
// committed baseline yet) yields an empty snapshot, not an error.
func (s *Store) LoadCurrent() (guard.Snapshot, error) {
	snap := guard.Snapshot{Search: make(map[guard.BrowserType]guard.SearchProviderInfo)}

	rows, err := s.db.Query(`SELECT name, install_date, version FROM apps ORDER BY name`)
	if err != nil {
		return guard.Snapshot{}, fmt.Errorf("failed to load apps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var app guard.AppInfo
		var version sql.NullString
		if err := rows.Scan(&app.Name, &app.InstallDate, &version); err != nil {
			return guard.Snapshot{}, fmt.Errorf("failed to scan app row: %w", err)
		}
		app.Version = version.String
		snap.Apps = append(snap.Apps, app)
	}
	if err := rows.Err(); err != nil {
		return guard.Snapshot{}, fmt.Errorf("error iterating apps: %w", err)
	}

	extRows, err := s.db.Query(`SELECT browser, extension_id, name FROM extensions ORDER BY browser, extension_id`)
	if err != nil {
		return guard.Snapshot{}, fmt.Errorf("failed to load extensions: %w", err)
	}
	defer extRows.Close()
	for extRows.Next() {
		var ext guard.ExtensionInfo
		var browser string
		if err := extRows.Scan(&browser, &ext.ID, &ext.Name); err != nil {
			return guard.Snapshot{}, fmt.Errorf("failed to scan extension row: %w", err)
		}
		ext.Browser = guard.BrowserType(browser)
		snap.Extensions = append(snap.Extensions, ext)
	}
	if err := extRows.Err(); err != nil {
		return guard.Snapshot{}, fmt.Errorf("error iterating extensions: %w", err)
	}

	searchRows, err := s.db.Query(`SELECT browser, url, name FROM search_configs`)
	if err != nil {
		return guard.Snapshot{}, fmt.Errorf("failed to load search configs: %w", err)
	}
	defer searchRows.Close()
	for searchRows.Next() {
		var provider guard.SearchProviderInfo
		var browser string
		if err := searchRows.Scan(&browser, &provider.URL, &provider.Name); err != nil {
			return guard.Snapshot{}, fmt.Errorf("failed to scan search config row: %w", err)
		}
		provider.Browser = guard.BrowserType(browser)
		snap.Search[provider.Browser] = provider
	}
	if err := searchRows.Err(); err != nil {
		return guard.Snapshot{}, fmt.Errorf("error iterating search configs: %w", err)
	}

	return snap, nil
}

// Replace atomically swaps the stored baseline for snap. All three
// entity collections are cleared and re-inserted in one transaction: on
// any failure the transaction rolls back and the previous baseline stays
// fully intact.
func (s *Store) Replace(snap guard.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"apps", "extensions", "search_configs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, app := range snap.Apps {
		_, err := tx.Exec(
			`INSERT INTO apps (name, install_date, version) VALUES (?, ?, ?)`,
			app.Name, app.InstallDate, app.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert app %s: %w", app.Name, err)
		}
	}

	for _, ext := range snap.Extensions {
		_, err := tx.Exec(
			`INSERT INTO extensions (browser, extension_id, name) VALUES (?, ?, ?)`,
			string(ext.Browser), ext.ID, ext.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert extension %s/%s: %w", ext.Browser, ext.ID, err)
		}
	}

	for browser, provider := range snap.Search {
		_, err := tx.Exec(
			`INSERT INTO search_configs (browser, url, name) VALUES (?, ?, ?)`,
			string(browser), provider.URL, provider.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert search config for %s: %w", browser, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace transaction: %w", err)
	}
	return nil
}

// Config operations

// GetConfig returns the value for key. The second return is false when
// the key has never been set.
func (s *Store) GetConfig(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return value, true, nil
}

// SetConfig stores value under key, last write wins.
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}
