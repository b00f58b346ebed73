// Package resource bounds check concurrency by live system-resource
// availability and tracks temporary artifacts for cleanup.
package resource

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// cpuHeadroomFraction is the share of logical CPUs handed to check
// workers; the remainder is left for the host OS and the tool
// subprocesses the checks spawn.
const cpuHeadroomFraction = 0.75

// Defaults for threshold gating.
const (
	DefaultMemoryThresholdPercent = 80.0
	DefaultCPUThresholdPercent    = 90.0
	DefaultRetryDelay             = time.Second
)

// Snapshot is a point-in-time view of resource state. It is recomputed
// on demand and never cached beyond one decision point.
type Snapshot struct {
	MemoryPercent float64 `json:"memory_percent"`
	CPUPercent    float64 `json:"cpu_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	ActiveSlots   int     `json:"active_slots"`
	MaxSlots      int     `json:"max_slots"`
}

// Sampler reports current memory, CPU and disk utilization percentages.
type Sampler func() (memPercent, cpuPercent, diskPercent float64, err error)

// Monitor hands out task slots bounded by a resource-derived
// concurrency limit. Slot acquisition blocks on a counting semaphore;
// memory/CPU threshold gating retries with a delay while holding no
// slot, and fails open when sampling fails.
type Monitor struct {
	maxParallel  int
	memThreshold float64
	cpuThreshold float64
	retryDelay   time.Duration

	sem     *semaphore.Weighted
	sampler Sampler

	mu     sync.Mutex
	active int
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSampler replaces the live system sampler. Tests use this to make
// resource readings deterministic.
func WithSampler(s Sampler) MonitorOption {
	return func(m *Monitor) { m.sampler = s }
}

// WithThresholds overrides the memory and CPU gating thresholds.
func WithThresholds(memPercent, cpuPercent float64) MonitorOption {
	return func(m *Monitor) {
		m.memThreshold = memPercent
		m.cpuThreshold = cpuPercent
	}
}

// WithRetryDelay overrides the delay between threshold re-checks.
func WithRetryDelay(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.retryDelay = d }
}

// NewMonitor creates a Monitor. configuredMax caps parallelism; zero or
// negative means "as many as the host allows". The effective limit is
// min(configuredMax, max(1, floor(0.75 × logical CPUs))), computed once
// here.
func NewMonitor(configuredMax int, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		maxParallel:  maxParallelTasks(configuredMax, runtime.NumCPU()),
		memThreshold: DefaultMemoryThresholdPercent,
		cpuThreshold: DefaultCPUThresholdPercent,
		retryDelay:   DefaultRetryDelay,
		sampler:      systemSample,
	}
	for _, o := range opts {
		o(m)
	}
	m.sem = semaphore.NewWeighted(int64(m.maxParallel))
	return m
}

func maxParallelTasks(configured, cpuCount int) int {
	recommended := int(float64(cpuCount) * cpuHeadroomFraction)
	if recommended < 1 {
		recommended = 1
	}
	if configured <= 0 || configured > recommended {
		return recommended
	}
	return configured
}

// MaxParallel returns the effective concurrency limit.
func (m *Monitor) MaxParallel() int { return m.maxParallel }

// Active returns the number of currently held slots.
func (m *Monitor) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// CanStartTask reports whether a new task could start right now. It is
// false whenever every slot is taken, independent of resource readings.
// When sampling fails the check falls open to the slot count alone.
func (m *Monitor) CanStartTask() bool {
	m.mu.Lock()
	slotFree := m.active < m.maxParallel
	m.mu.Unlock()
	if !slotFree {
		return false
	}
	return m.resourcesAvailable()
}

func (m *Monitor) resourcesAvailable() bool {
	memPct, cpuPct, _, err := m.sampler()
	if err != nil {
		slog.Debug("resource sampling failed, falling back to slot count", "error", err)
		return true
	}
	if memPct > m.memThreshold {
		slog.Warn("memory usage high, deferring task start", "memory_percent", memPct)
		return false
	}
	if cpuPct > m.cpuThreshold {
		slog.Warn("cpu usage high, deferring task start", "cpu_percent", cpuPct)
		return false
	}
	return true
}

// AcquireSlot blocks until a slot is free and resource thresholds allow
// a new task, or ctx is done. Callers must pair it with ReleaseSlot.
func (m *Monitor) AcquireSlot(ctx context.Context) error {
	for {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		if m.resourcesAvailable() {
			m.mu.Lock()
			m.active++
			m.mu.Unlock()
			return nil
		}
		// Thresholds exceeded: give the slot back while waiting so
		// other work (and the host) can drain.
		m.sem.Release(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
}

// TryAcquireSlot acquires a slot only if one is immediately available
// and thresholds allow it.
func (m *Monitor) TryAcquireSlot() bool {
	if !m.sem.TryAcquire(1) {
		return false
	}
	if !m.resourcesAvailable() {
		m.sem.Release(1)
		return false
	}
	m.mu.Lock()
	m.active++
	m.mu.Unlock()
	return true
}

// ReleaseSlot returns a held slot. It must be called exactly once per
// successful acquire, regardless of task outcome.
func (m *Monitor) ReleaseSlot() {
	m.mu.Lock()
	if m.active > 0 {
		m.active--
	}
	m.mu.Unlock()
	m.sem.Release(1)
}

// Snapshot samples current utilization and combines it with slot
// counters. A sampling error leaves the utilization fields zero; the
// slot counters are always valid.
func (m *Monitor) Snapshot() (Snapshot, error) {
	snap := Snapshot{MaxSlots: m.maxParallel}
	m.mu.Lock()
	snap.ActiveSlots = m.active
	m.mu.Unlock()

	memPct, cpuPct, diskPct, err := m.sampler()
	if err != nil {
		return snap, err
	}
	snap.MemoryPercent = memPct
	snap.CPUPercent = cpuPct
	snap.DiskPercent = diskPct
	return snap, nil
}
