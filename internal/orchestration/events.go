package orchestration

import (
	"sync"
	"time"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// EventType identifies a progress event.
type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventRunCompleted  EventType = "run_completed"
	EventLevelStarted  EventType = "level_started"
	EventTaskStarted   EventType = "task_started"
	EventTaskCompleted EventType = "task_completed"
	EventTaskSkipped   EventType = "task_skipped"
)

// ProgressEvent is published to listeners as a run advances.
type ProgressEvent struct {
	Type      EventType
	TaskName  string
	Level     int
	Result    *models.CheckResult
	Err       error
	Timestamp time.Time
}

// ProgressListener receives progress events. Callbacks run on
// orchestrator goroutines and must return quickly.
type ProgressListener func(ProgressEvent)

// eventBus fans progress events out to registered listeners.
type eventBus struct {
	mu        sync.Mutex
	listeners []ProgressListener
}

func (b *eventBus) subscribe(l ProgressListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *eventBus) publish(ev ProgressEvent) {
	ev.Timestamp = time.Now()

	// Copy under lock so a listener subscribing mid-run cannot race
	// the iteration.
	b.mu.Lock()
	listeners := make([]ProgressListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
