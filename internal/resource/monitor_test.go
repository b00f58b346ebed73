package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func calmSampler() Sampler {
	return func() (float64, float64, float64, error) { return 10, 10, 10, nil }
}

func TestMaxParallelTasks(t *testing.T) {
	// 8 CPUs recommend 6 workers.
	assert.Equal(t, 6, maxParallelTasks(0, 8))
	assert.Equal(t, 6, maxParallelTasks(100, 8))
	assert.Equal(t, 4, maxParallelTasks(4, 8))

	// A single CPU still gets one worker.
	assert.Equal(t, 1, maxParallelTasks(0, 1))
	assert.Equal(t, 1, maxParallelTasks(8, 1))
}

func TestCanStartTask_SlotExhaustion(t *testing.T) {
	m := NewMonitor(1, WithSampler(calmSampler()))

	require.True(t, m.CanStartTask())
	require.True(t, m.TryAcquireSlot())

	// Full slots veto the start even with idle resources.
	assert.False(t, m.CanStartTask())
	assert.False(t, m.TryAcquireSlot())

	m.ReleaseSlot()
	assert.True(t, m.CanStartTask())
}

func TestCanStartTask_ThresholdsBlock(t *testing.T) {
	m := NewMonitor(2, WithSampler(func() (float64, float64, float64, error) {
		return 95, 10, 10, nil
	}))
	assert.False(t, m.CanStartTask())

	m = NewMonitor(2, WithSampler(func() (float64, float64, float64, error) {
		return 10, 99, 10, nil
	}))
	assert.False(t, m.CanStartTask())
}

func TestCanStartTask_FailsOpenOnSamplerError(t *testing.T) {
	m := NewMonitor(2, WithSampler(func() (float64, float64, float64, error) {
		return 0, 0, 0, errors.New("proc not mounted")
	}))
	assert.True(t, m.CanStartTask())
	assert.True(t, m.TryAcquireSlot())
}

func TestAcquireSlot_BlocksUntilRelease(t *testing.T) {
	m := NewMonitor(1, WithSampler(calmSampler()))
	ctx := context.Background()

	require.NoError(t, m.AcquireSlot(ctx))

	acquired := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		if err := m.AcquireSlot(ctx); err != nil {
			return err
		}
		close(acquired)
		m.ReleaseSlot()
		return nil
	})

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	m.ReleaseSlot()
	require.NoError(t, g.Wait())

	select {
	case <-acquired:
	default:
		t.Fatal("second acquire never completed")
	}
}

func TestAcquireSlot_ContextCanceled(t *testing.T) {
	m := NewMonitor(1, WithSampler(calmSampler()))
	require.NoError(t, m.AcquireSlot(context.Background()))
	defer m.ReleaseSlot()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := m.AcquireSlot(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, m.Active())
}

func TestAcquireSlot_RetriesAfterThresholdsClear(t *testing.T) {
	calls := 0
	m := NewMonitor(1,
		WithRetryDelay(5*time.Millisecond),
		WithSampler(func() (float64, float64, float64, error) {
			calls++
			if calls < 3 {
				return 95, 10, 10, nil
			}
			return 10, 10, 10, nil
		}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.AcquireSlot(ctx))
	assert.GreaterOrEqual(t, calls, 3)
	m.ReleaseSlot()
}

func TestSnapshot(t *testing.T) {
	m := NewMonitor(2, WithSampler(func() (float64, float64, float64, error) {
		return 42.5, 13.25, 61, nil
	}))
	require.True(t, m.TryAcquireSlot())

	snap, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 42.5, snap.MemoryPercent)
	assert.Equal(t, 13.25, snap.CPUPercent)
	assert.Equal(t, 61.0, snap.DiskPercent)
	assert.Equal(t, 1, snap.ActiveSlots)
	assert.Equal(t, m.MaxParallel(), snap.MaxSlots)
}

func TestSnapshot_SamplerErrorKeepsSlotCounts(t *testing.T) {
	m := NewMonitor(2, WithSampler(func() (float64, float64, float64, error) {
		return 0, 0, 0, errors.New("boom")
	}))
	snap, err := m.Snapshot()
	require.Error(t, err)
	assert.Equal(t, m.MaxParallel(), snap.MaxSlots)
}
