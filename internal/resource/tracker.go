package resource

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	// DefaultTempMaxAge is how long a registered temp artifact may live
	// before periodic cleanup removes it.
	DefaultTempMaxAge = time.Hour

	// DefaultCleanupInterval is how often the background sweep runs.
	DefaultCleanupInterval = 5 * time.Minute
)

type tempEntry struct {
	path       string
	kind       string
	registered time.Time
}

// TempTracker records temporary files and directories created by checks
// so they are removed when aged out and at shutdown.
type TempTracker struct {
	maxAge   time.Duration
	interval time.Duration

	mu      sync.Mutex
	entries map[string]tempEntry

	started  bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewTempTracker creates a tracker. Start must be called to enable the
// periodic sweep; Register and Cleanup work without it.
func NewTempTracker(maxAge, interval time.Duration) *TempTracker {
	if maxAge <= 0 {
		maxAge = DefaultTempMaxAge
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &TempTracker{
		maxAge:   maxAge,
		interval: interval,
		entries:  make(map[string]tempEntry),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register records a temp artifact. kind is a short label like "file"
// or "dir" used only for logging.
func (t *TempTracker) Register(path, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[path] = tempEntry{path: path, kind: kind, registered: time.Now()}
}

// Forget drops a path from tracking without deleting it. Used when a
// check promotes a temp artifact into a real output.
func (t *TempTracker) Forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, path)
}

// Count returns the number of tracked artifacts.
func (t *TempTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Cleanup removes tracked artifacts older than maxAge and returns how
// many were removed. Removal errors are logged and the entry is kept
// for the next sweep.
func (t *TempTracker) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	t.mu.Lock()
	var aged []tempEntry
	for _, e := range t.entries {
		if e.registered.Before(cutoff) {
			aged = append(aged, e)
		}
	}
	t.mu.Unlock()

	removed := 0
	for _, e := range aged {
		if err := os.RemoveAll(e.path); err != nil {
			slog.Warn("failed to remove temp artifact", "path", e.path, "error", err)
			continue
		}
		t.mu.Lock()
		delete(t.entries, e.path)
		t.mu.Unlock()
		removed++
	}
	if removed > 0 {
		slog.Debug("removed aged temp artifacts", "count", removed)
	}
	return removed
}

// CleanupAll removes every tracked artifact regardless of age.
func (t *TempTracker) CleanupAll() int {
	return t.Cleanup(-time.Second)
}

// Start launches the periodic sweep. Close stops it.
func (t *TempTracker) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Cleanup(t.maxAge)
			case <-t.stop:
				return
			}
		}
	}()
}

// Close stops the sweep goroutine and removes everything still tracked.
func (t *TempTracker) Close() {
	t.stopOnce.Do(func() {
		close(t.stop)
		t.mu.Lock()
		started := t.started
		t.mu.Unlock()
		if started {
			select {
			case <-t.done:
			case <-time.After(time.Second):
			}
		}
	})
	t.CleanupAll()
}
