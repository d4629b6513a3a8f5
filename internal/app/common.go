package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/blackwell-systems/hostguard/internal/alert"
	"github.com/blackwell-systems/hostguard/internal/guard"
	"github.com/blackwell-systems/hostguard/internal/store"
)

// openStore opens the database and ensures the schema exists. Callers
// must Close it.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// resolveEndpoint picks the alert endpoint: an explicit flag wins, then
// the persisted config value, then the unconfigured placeholder.
func resolveEndpoint(st *store.Store, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	value, ok, err := st.GetConfig(alert.EndpointConfigKey)
	if err != nil {
		return "", err
	}
	if ok && value != "" {
		return value, nil
	}
	return alert.PlaceholderEndpoint, nil
}

// recordingSink forwards alerts to the real sink while keeping a copy so
// the CLI can render them after the scan. The core itself retains no
// alert history.
type recordingSink struct {
	next guard.AlertSink

	mu     sync.Mutex
	alerts []guard.Alert
}

func (r *recordingSink) Send(ctx context.Context, a guard.Alert) error {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
	return r.next.Send(ctx, a)
}

func (r *recordingSink) recorded() []guard.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]guard.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}
