package guard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// State is the orchestrator's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateDiffing
	StateAlerting
	StatePersisting
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScanning:
		return "Scanning"
	case StateDiffing:
		return "Diffing"
	case StateAlerting:
		return "Alerting"
	case StatePersisting:
		return "Persisting"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the orchestrator's externally observable condition. LastScan
// is the wall time of the last scan that reached persistence; zero means
// no scan has completed yet.
type Status struct {
	State      State
	Message    string
	LastScan   time.Time
	LastAlerts int
}

// Orchestrator owns the scan lifecycle. One scan runs at a time: a
// trigger arriving while a scan is in flight is rejected and returns the
// in-flight status unchanged.
//
// RunScan never returns an error. All failure modes are reported through
// the status observable, so a trigger cannot blow up its caller.
type Orchestrator struct {
	collector Collector
	store     SnapshotStore
	sink      AlertSink
	logger    *log.Logger
	clock     func() time.Time

	mu       sync.Mutex
	scanning bool
	status   Status
	subs     []chan Status
}

// New wires an orchestrator from its collaborators. A nil logger
// discards log output.
func New(collector Collector, store SnapshotStore, sink AlertSink, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &Orchestrator{
		collector: collector,
		store:     store,
		sink:      sink,
		logger:    logger,
		clock:     time.Now,
		status:    Status{State: StateIdle, Message: "idle"},
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Status returns a copy of the current status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Subscribe returns a channel receiving every status transition. The
// channel is buffered; transitions are dropped rather than blocking the
// scan when a subscriber falls behind.
func (o *Orchestrator) Subscribe() <-chan Status {
	ch := make(chan Status, 16)
	o.mu.Lock()
	o.subs = append(o.subs, ch)
	o.mu.Unlock()
	return ch
}

// RunScan executes one full scan cycle:
// collect -> load baseline -> diff -> dispatch alerts -> commit baseline.
//
// The baseline is replaced only after every alert for the cycle has been
// dispatched; any failure before that point leaves the stored baseline
// untouched, so the same differences are detected again next cycle.
func (o *Orchestrator) RunScan(ctx context.Context) Status {
	if !o.begin() {
		o.logger.Printf("scan trigger rejected: a scan is already in flight")
		return o.Status()
	}
	defer o.end()

	o.transition(StateScanning, "collecting host state")
	current, missing := o.collect(ctx)
	if err := ctx.Err(); err != nil {
		o.fail(fmt.Sprintf("scan aborted during collection: %v", err))
		return o.Status()
	}

	prior, err := o.store.LoadCurrent()
	if err != nil {
		o.fail(fmt.Sprintf("cannot load baseline snapshot: %v", err))
		return o.Status()
	}
	current = carryForward(prior, current, missing)

	o.transition(StateDiffing, "comparing against baseline")
	engine := NewDiffEngine(func() int64 { return o.clock().UnixMilli() })
	alerts := engine.Diff(prior, current)

	o.transition(StateAlerting, fmt.Sprintf("dispatching %d alerts", len(alerts)))
	o.dispatch(ctx, alerts)
	if err := ctx.Err(); err != nil {
		o.fail(fmt.Sprintf("scan aborted before persisting: %v", err))
		return o.Status()
	}

	o.transition(StatePersisting, "committing new baseline")
	if err := o.store.Replace(current); err != nil {
		o.fail(fmt.Sprintf("baseline replace failed, previous baseline kept: %v", err))
		return o.Status()
	}

	o.mu.Lock()
	o.status.LastScan = o.clock()
	o.status.LastAlerts = len(alerts)
	o.mu.Unlock()

	if len(alerts) == 0 {
		o.transition(StateIdle, "scan complete: no changes")
	} else {
		o.transition(StateIdle, fmt.Sprintf("scan complete: %d changes detected", len(alerts)))
	}
	return o.Status()
}

// sourceKey identifies one collectable source for the carry-forward
// logic: the app inventory, or a (class, browser) pair.
type sourceKey struct {
	class   string // "apps", "extensions", "search"
	browser BrowserType
}

// collect builds the current snapshot. Browsers are independent and read
// concurrently. A source whose read fails is recorded in missing so the
// caller can substitute the prior baseline instead of diffing against an
// accidental empty.
func (o *Orchestrator) collect(ctx context.Context) (Snapshot, map[sourceKey]bool) {
	current := Snapshot{Search: make(map[BrowserType]SearchProviderInfo)}
	missing := make(map[sourceKey]bool)

	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		apps, err := o.collector.InstalledApps(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			o.logger.Printf("app inventory unreadable this cycle: %v", err)
			missing[sourceKey{class: "apps"}] = true
			return
		}
		current.Apps = apps
	}()

	for _, browser := range AllBrowsers() {
		browser := browser
		wg.Add(1)
		go func() {
			defer wg.Done()
			exts, extErr := o.collector.BrowserExtensions(ctx, browser)
			search, searchErr := o.collector.DefaultSearch(ctx, browser)

			mu.Lock()
			defer mu.Unlock()
			if extErr != nil {
				o.logger.Printf("%s extensions unreadable this cycle: %v", browser, extErr)
				missing[sourceKey{class: "extensions", browser: browser}] = true
			} else {
				current.Extensions = append(current.Extensions, exts...)
			}
			if searchErr != nil {
				o.logger.Printf("%s search provider unreadable this cycle: %v", browser, searchErr)
				missing[sourceKey{class: "search", browser: browser}] = true
			} else if search != nil {
				current.Search[browser] = *search
			}
		}()
	}

	wg.Wait()
	return current, missing
}

// carryForward substitutes the prior baseline's entries for every source
// that was unreadable this cycle. The snapshot stays whole (Replace is
// still all-or-nothing) and a transient read failure produces no
// spurious REMOVED alerts.
func carryForward(prior, current Snapshot, missing map[sourceKey]bool) Snapshot {
	if len(missing) == 0 {
		return current
	}
	if missing[sourceKey{class: "apps"}] {
		current.Apps = prior.Apps
	}
	for _, browser := range AllBrowsers() {
		if missing[sourceKey{class: "extensions", browser: browser}] {
			for _, ext := range prior.Extensions {
				if ext.Browser == browser {
					current.Extensions = append(current.Extensions, ext)
				}
			}
		}
		if missing[sourceKey{class: "search", browser: browser}] {
			if prev, ok := prior.Search[browser]; ok {
				current.Search[browser] = prev
			}
		}
	}
	return current
}

// dispatch sends each alert in its own goroutine and waits for all of
// them. Delivery failures are logged and swallowed: they never affect
// the scan outcome or block persistence.
func (o *Orchestrator) dispatch(ctx context.Context, alerts []Alert) {
	var wg sync.WaitGroup
	for _, alert := range alerts {
		alert := alert
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.sink.Send(ctx, alert); err != nil {
				o.logger.Printf("alert delivery failed (%s): %v", alert.Type, err)
			}
		}()
	}
	wg.Wait()
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scanning {
		return false
	}
	o.scanning = true
	return true
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.scanning = false
	o.mu.Unlock()
}

func (o *Orchestrator) fail(msg string) {
	o.logger.Printf("scan failed: %s", msg)
	o.transition(StateError, msg)
}

// transition is the single path through which state and status change,
// keeping the observable consistent with the lifecycle.
func (o *Orchestrator) transition(state State, msg string) {
	o.mu.Lock()
	o.status.State = state
	o.status.Message = msg
	snapshot := o.status
	subs := o.subs
	o.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
