package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/hostguard/internal/alert"
	"github.com/blackwell-systems/hostguard/internal/guard"
	"github.com/blackwell-systems/hostguard/internal/store"
)

// point the --db flag at a throwaway database for the duration of a test
func useTempDB(t *testing.T) {
	t.Helper()
	old := dbPath
	dbPath = filepath.Join(t.TempDir(), "hostguard.db")
	t.Cleanup(func() { dbPath = old })
}

func TestGetDBPath_FlagWins(t *testing.T) {
	useTempDB(t)

	got, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath() failed: %v", err)
	}
	if got != dbPath {
		t.Errorf("getDBPath() = %q, want flag value %q", got, dbPath)
	}
}

func TestOpenStore_CreatesSchema(t *testing.T) {
	useTempDB(t)

	st, err := openStore()
	if err != nil {
		t.Fatalf("openStore() failed: %v", err)
	}
	defer st.Close()

	// Schema exists: LoadCurrent on a fresh store works and is empty.
	snap, err := st.LoadCurrent()
	if err != nil {
		t.Fatalf("LoadCurrent() failed: %v", err)
	}
	if !snap.IsEmpty() {
		t.Errorf("fresh database snapshot = %+v, want empty", snap)
	}
}

func TestResolveEndpoint_Precedence(t *testing.T) {
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	// Nothing set: placeholder.
	endpoint, err := resolveEndpoint(st, "")
	if err != nil {
		t.Fatalf("resolveEndpoint() failed: %v", err)
	}
	if endpoint != alert.PlaceholderEndpoint {
		t.Errorf("resolveEndpoint() = %q, want placeholder", endpoint)
	}

	// Stored config beats placeholder.
	if err := st.SetConfig(alert.EndpointConfigKey, "https://stored.example.org"); err != nil {
		t.Fatalf("SetConfig() failed: %v", err)
	}
	endpoint, _ = resolveEndpoint(st, "")
	if endpoint != "https://stored.example.org" {
		t.Errorf("resolveEndpoint() = %q, want stored value", endpoint)
	}

	// Flag beats stored config.
	endpoint, _ = resolveEndpoint(st, "https://flag.example.org")
	if endpoint != "https://flag.example.org" {
		t.Errorf("resolveEndpoint() = %q, want flag value", endpoint)
	}
}

type stubSink struct{ err error }

func (s *stubSink) Send(ctx context.Context, a guard.Alert) error { return s.err }

func TestRecordingSink_KeepsCopiesAndForwards(t *testing.T) {
	rec := &recordingSink{next: &stubSink{err: errors.New("down")}}

	a := guard.Alert{Type: guard.AlertAppAdded, Message: "New application installed: X"}
	if err := rec.Send(context.Background(), a); err == nil {
		t.Error("recordingSink should forward the inner sink's error")
	}

	got := rec.recorded()
	if len(got) != 1 || !strings.Contains(got[0].Message, "X") {
		t.Errorf("recorded() = %+v, want the sent alert", got)
	}
}
