package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeCollector returns canned results, with optional per-source errors
// to simulate unreadable sources.
type fakeCollector struct {
	apps    []AppInfo
	appsErr error

	extensions map[BrowserType][]ExtensionInfo
	extErr     map[BrowserType]error

	search    map[BrowserType]*SearchProviderInfo
	searchErr map[BrowserType]error

	block chan struct{} // when set, InstalledApps waits until closed
}

func (c *fakeCollector) InstalledApps(ctx context.Context) ([]AppInfo, error) {
	if c.block != nil {
		<-c.block
	}
	return c.apps, c.appsErr
}

func (c *fakeCollector) BrowserExtensions(ctx context.Context, b BrowserType) ([]ExtensionInfo, error) {
	if err := c.extErr[b]; err != nil {
		return nil, err
	}
	return c.extensions[b], nil
}

func (c *fakeCollector) DefaultSearch(ctx context.Context, b BrowserType) (*SearchProviderInfo, error) {
	if err := c.searchErr[b]; err != nil {
		return nil, err
	}
	return c.search[b], nil
}

// memStore is an in-memory SnapshotStore with optional failure injection.
type memStore struct {
	mu         sync.Mutex
	current    Snapshot
	loadErr    error
	replaceErr error
	replaced   int
}

func (s *memStore) LoadCurrent() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Snapshot{}, s.loadErr
	}
	return s.current, nil
}

func (s *memStore) Replace(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.current = snap
	s.replaced++
	return nil
}

// captureSink records every alert it is asked to deliver.
type captureSink struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (s *captureSink) Send(ctx context.Context, a Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return s.err
}

func (s *captureSink) sent() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func TestRunScan_FirstRunEstablishesBaseline(t *testing.T) {
	col := &fakeCollector{
		apps: []AppInfo{{Name: "App1", Version: "1.0"}},
		extensions: map[BrowserType][]ExtensionInfo{
			BrowserChrome: {{ID: "id1", Name: "Ext1", Browser: BrowserChrome}},
		},
	}
	st := &memStore{}
	sink := &captureSink{}
	orch := New(col, st, sink, nil)

	status := orch.RunScan(context.Background())

	if status.State != StateIdle {
		t.Fatalf("final state = %s, want Idle (%s)", status.State, status.Message)
	}
	// First run diffs against an empty baseline, so everything is "added".
	if got := len(sink.sent()); got != 2 {
		t.Errorf("sent %d alerts, want 2 (one app, one extension)", got)
	}
	if st.replaced != 1 {
		t.Errorf("baseline replaced %d times, want 1", st.replaced)
	}
	if len(st.current.Apps) != 1 || len(st.current.Extensions) != 1 {
		t.Errorf("committed baseline = %+v, want collected snapshot", st.current)
	}
	if status.LastScan.IsZero() {
		t.Error("LastScan should be set after a successful scan")
	}
}

// Scenario: two consecutive scans with identical collector outputs and a
// correctly persisted baseline between them produce zero alerts on the
// second scan.
func TestRunScan_SteadyStateProducesNoAlerts(t *testing.T) {
	col := &fakeCollector{
		apps: []AppInfo{{Name: "App1", Version: "1.0"}},
		search: map[BrowserType]*SearchProviderInfo{
			BrowserChrome: {Browser: BrowserChrome, Name: "Google", URL: "https://google.com"},
		},
	}
	st := &memStore{}
	sink := &captureSink{}
	orch := New(col, st, sink, nil)

	orch.RunScan(context.Background())
	firstCount := len(sink.sent())

	status := orch.RunScan(context.Background())
	if status.State != StateIdle {
		t.Fatalf("final state = %s, want Idle", status.State)
	}
	if got := len(sink.sent()); got != firstCount {
		t.Errorf("second scan sent %d extra alerts, want 0", got-firstCount)
	}
	if status.LastAlerts != 0 {
		t.Errorf("LastAlerts = %d, want 0", status.LastAlerts)
	}
}

func TestRunScan_PersistenceFailureKeepsBaseline(t *testing.T) {
	col := &fakeCollector{apps: []AppInfo{{Name: "App2", Version: "2.0"}}}
	prior := Snapshot{Apps: []AppInfo{{Name: "App1", Version: "1.0"}}}
	st := &memStore{current: prior, replaceErr: errors.New("disk full")}
	sink := &captureSink{}
	orch := New(col, st, sink, nil)

	status := orch.RunScan(context.Background())

	if status.State != StateError {
		t.Fatalf("final state = %s, want Error", status.State)
	}
	if status.LastScan != (time.Time{}) {
		t.Error("LastScan must not advance when the baseline commit fails")
	}
	if len(st.current.Apps) != 1 || st.current.Apps[0].Name != "App1" {
		t.Errorf("baseline = %+v, want the prior snapshot intact", st.current)
	}

	// The same differences must be detected again next cycle.
	st.replaceErr = nil
	before := len(sink.sent())
	status = orch.RunScan(context.Background())
	if status.State != StateIdle {
		t.Fatalf("retry final state = %s, want Idle", status.State)
	}
	if got := len(sink.sent()) - before; got == 0 {
		t.Error("retry scan should re-detect the uncommitted differences")
	}
}

func TestRunScan_LoadFailureEntersError(t *testing.T) {
	col := &fakeCollector{}
	st := &memStore{loadErr: errors.New("database locked")}
	orch := New(col, st, &captureSink{}, nil)

	status := orch.RunScan(context.Background())
	if status.State != StateError {
		t.Fatalf("final state = %s, want Error", status.State)
	}
	if st.replaced != 0 {
		t.Error("baseline must not be replaced when the scan aborts")
	}
}

// A source that is unreadable this cycle is carried forward from the
// prior baseline: no REMOVED alerts fire and the committed snapshot
// still contains the old entries.
func TestRunScan_UnreadableSourceCarriesForward(t *testing.T) {
	prior := Snapshot{
		Apps: []AppInfo{{Name: "App1", Version: "1.0"}},
		Extensions: []ExtensionInfo{
			{ID: "id1", Name: "Ext1", Browser: BrowserChrome},
			{ID: "id2", Name: "Ext2", Browser: BrowserEdge},
		},
		Search: map[BrowserType]SearchProviderInfo{
			BrowserChrome: {Browser: BrowserChrome, URL: "https://google.com"},
		},
	}
	col := &fakeCollector{
		appsErr: errors.New("registry unreadable"),
		extErr:  map[BrowserType]error{BrowserChrome: errors.New("preferences locked")},
		extensions: map[BrowserType][]ExtensionInfo{
			BrowserEdge: {{ID: "id2", Name: "Ext2", Browser: BrowserEdge}},
		},
		searchErr: map[BrowserType]error{BrowserChrome: errors.New("preferences locked")},
	}
	st := &memStore{current: prior}
	sink := &captureSink{}
	orch := New(col, st, sink, nil)

	status := orch.RunScan(context.Background())
	if status.State != StateIdle {
		t.Fatalf("final state = %s, want Idle (%s)", status.State, status.Message)
	}
	if got := sink.sent(); len(got) != 0 {
		t.Errorf("unreadable sources produced alerts: %+v", got)
	}
	if len(st.current.Apps) != 1 || len(st.current.Extensions) != 2 {
		t.Errorf("committed baseline lost carried-forward entries: %+v", st.current)
	}
	if _, ok := st.current.Search[BrowserChrome]; !ok {
		t.Error("committed baseline lost the carried-forward search provider")
	}
}

func TestRunScan_SingleFlight(t *testing.T) {
	block := make(chan struct{})
	col := &fakeCollector{block: block}
	st := &memStore{}
	orch := New(col, st, &captureSink{}, nil)

	done := make(chan Status, 1)
	go func() {
		done <- orch.RunScan(context.Background())
	}()

	// Wait for the first scan to hold the single-flight slot.
	deadline := time.After(2 * time.Second)
	for orch.Status().State != StateScanning {
		select {
		case <-deadline:
			t.Fatal("first scan never reached Scanning")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	rejected := orch.RunScan(context.Background())
	if rejected.State != StateScanning {
		t.Errorf("overlapping trigger got state %s, want the in-flight Scanning status", rejected.State)
	}
	if st.replaced != 0 {
		t.Error("rejected trigger must not run a scan")
	}

	close(block)
	final := <-done
	if final.State != StateIdle {
		t.Fatalf("first scan final state = %s, want Idle", final.State)
	}
	if st.replaced != 1 {
		t.Errorf("baseline replaced %d times, want exactly 1", st.replaced)
	}
}

func TestRunScan_ErrorStateRecoversOnNextTrigger(t *testing.T) {
	col := &fakeCollector{apps: []AppInfo{{Name: "App1"}}}
	st := &memStore{replaceErr: errors.New("transient")}
	orch := New(col, st, &captureSink{}, nil)

	if status := orch.RunScan(context.Background()); status.State != StateError {
		t.Fatalf("first scan state = %s, want Error", status.State)
	}

	st.replaceErr = nil
	if status := orch.RunScan(context.Background()); status.State != StateIdle {
		t.Fatalf("second scan state = %s, want Idle", status.State)
	}
}

func TestRunScan_DeliveryFailureDoesNotAbort(t *testing.T) {
	col := &fakeCollector{apps: []AppInfo{{Name: "App1"}}}
	st := &memStore{}
	sink := &captureSink{err: errors.New("endpoint down")}
	orch := New(col, st, sink, nil)

	status := orch.RunScan(context.Background())
	if status.State != StateIdle {
		t.Fatalf("final state = %s, want Idle: delivery failures are degraded, not fatal", status.State)
	}
	if st.replaced != 1 {
		t.Error("baseline should be committed even when alert delivery fails")
	}
}

func TestRunScan_CancelledBeforePersistKeepsBaseline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	col := &fakeCollector{apps: []AppInfo{{Name: "App1"}}}
	st := &memStore{current: Snapshot{Apps: []AppInfo{{Name: "Old"}}}}
	orch := New(col, st, &captureSink{}, nil)

	status := orch.RunScan(ctx)
	if status.State != StateError {
		t.Fatalf("final state = %s, want Error", status.State)
	}
	if st.replaced != 0 {
		t.Error("aborted scan must never commit a baseline")
	}
}

func TestSubscribe_ObservesLifecycle(t *testing.T) {
	col := &fakeCollector{}
	orch := New(col, &memStore{}, &captureSink{}, nil)
	updates := orch.Subscribe()

	orch.RunScan(context.Background())

	seen := make(map[State]bool)
	for {
		select {
		case st := <-updates:
			seen[st.State] = true
		default:
			for _, want := range []State{StateScanning, StateDiffing, StateAlerting, StatePersisting, StateIdle} {
				if !seen[want] {
					t.Errorf("never observed state %s", want)
				}
			}
			return
		}
	}
}
