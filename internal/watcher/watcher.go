// Package watcher drives repeated scans: a fixed interval ticker plus a
// filesystem nudge that triggers an early full scan cycle when a watched
// browser profile or application directory changes. Change detection
// itself always happens through the normal snapshot diff, never from the
// filesystem events.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// debounceDelay batches bursts of filesystem events (browsers rewrite
// their preference files constantly) into a single scan.
const debounceDelay = 30 * time.Second

// Scanner is the trigger surface the watcher drives.
type Scanner interface {
	RunScan(ctx context.Context) guard.Status
}

// Watcher runs scans on an interval and on filesystem nudges.
type Watcher struct {
	scanner  Scanner
	logger   *log.Logger
	interval time.Duration

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a watcher that scans every interval.
func New(scanner Scanner, interval time.Duration, logger *log.Logger) (*Watcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %v", interval)
	}
	return &Watcher{
		scanner:  scanner,
		logger:   logger,
		interval: interval,
	}, nil
}

// Start runs an immediate scan and then keeps scanning in the background
// until Stop is called.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	watched := 0
	for _, path := range NudgePaths() {
		if err := fsw.Add(path); err != nil {
			// Missing profile directories are normal; watch what exists.
			continue
		}
		watched++
	}
	w.logger.Printf("watching %d paths, scanning every %v", watched, w.interval)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
	return nil
}

// Stop cancels the scan loop and waits for it to exit. A scan already in
// flight finishes its cycle or aborts at its next cancellation check; an
// aborted cycle never commits a baseline.
func (w *Watcher) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.scan(ctx)

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(debounceDelay)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("filesystem watch error: %v", err)

		case <-debounce.C:
			w.logger.Printf("filesystem change detected, scanning early")
			w.scan(ctx)
			ticker.Reset(w.interval)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	status := w.scanner.RunScan(ctx)
	w.logger.Printf("scan finished: state=%s %s", status.State, status.Message)
}

// NudgePaths returns the directories whose modification suggests the
// host state changed: browser profile directories and, where tracked,
// the application folders.
func NudgePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths, "/Applications")
		if home != "" {
			paths = append(paths,
				filepath.Join(home, "Applications"),
				filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default"),
			)
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			paths = append(paths,
				filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default"),
				filepath.Join(localAppData, "Microsoft", "Edge", "User Data", "Default"),
			)
		}
	default:
		if home != "" {
			paths = append(paths,
				filepath.Join(home, ".config", "google-chrome", "Default"),
				filepath.Join(home, ".config", "chromium", "Default"),
			)
		}
	}
	return paths
}
