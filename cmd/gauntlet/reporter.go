package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gauntlet-dev/gauntlet/internal/models"
	"github.com/gauntlet-dev/gauntlet/internal/orchestration"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressReporter prints check progress as the orchestrator advances.
// On a terminal it keeps an animated status line of the checks that are
// currently running; completed checks get a permanent line each.
type progressReporter struct {
	w   io.Writer
	tty bool

	mu      sync.Mutex
	running map[string]struct{}
	frame   int
	done    chan struct{}
	stopped sync.Once
}

func newProgressReporter(w io.Writer, tty bool) *progressReporter {
	r := &progressReporter{
		w:       w,
		tty:     tty,
		running: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	if tty {
		go r.animate()
	}
	return r
}

// Listen is the orchestrator progress callback.
func (r *progressReporter) Listen(ev orchestration.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case orchestration.EventTaskStarted:
		r.running[ev.TaskName] = struct{}{}
		if !r.tty {
			fmt.Fprintf(r.w, "→ %s\n", ev.TaskName)
		}
	case orchestration.EventTaskCompleted:
		delete(r.running, ev.TaskName)
		r.clearLineLocked()
		fmt.Fprintf(r.w, "%s %s (%s)\n", resultMark(ev.Result), ev.TaskName, ev.Result.Duration.Round(10*time.Millisecond))
	case orchestration.EventTaskSkipped:
		delete(r.running, ev.TaskName)
		r.clearLineLocked()
		fmt.Fprintf(r.w, "⏭ %s (skipped)\n", ev.TaskName)
	}
}

func (r *progressReporter) animate() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.clearLineLocked()
			if len(r.running) > 0 {
				names := make([]string, 0, len(r.running))
				for name := range r.running {
					names = append(names, name)
				}
				fmt.Fprintf(r.w, "\r%s running %s", spinnerFrames[r.frame%len(spinnerFrames)], strings.Join(names, ", "))
				r.frame++
			}
			r.mu.Unlock()
		}
	}
}

// clearLineLocked erases the animated status line. Callers hold r.mu.
func (r *progressReporter) clearLineLocked() {
	if r.tty {
		fmt.Fprint(r.w, "\r\x1b[2K")
	}
}

// Stop halts the animation and clears any leftover status line.
func (r *progressReporter) Stop() {
	r.stopped.Do(func() {
		close(r.done)
		r.mu.Lock()
		r.clearLineLocked()
		r.mu.Unlock()
	})
}

func resultMark(result *models.CheckResult) string {
	if result == nil {
		return "?"
	}
	switch result.Status {
	case models.StatusSuccess:
		return "✓"
	case models.StatusWarning:
		return "⚠"
	case models.StatusSkipped:
		return "⏭"
	default:
		return "✗"
	}
}
