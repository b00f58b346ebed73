package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

func TestAssessHealth_Healthy(t *testing.T) {
	h := AssessHealth(Stats{Total: 2, Resolved: 2}, resource.Snapshot{
		MemoryPercent: 40, DiskPercent: 50,
	})
	assert.Equal(t, HealthHealthy, h.Status)
	assert.Empty(t, h.Issues)
}

func TestAssessHealth_HighErrorCountWarns(t *testing.T) {
	h := AssessHealth(Stats{Total: 11, Resolved: 11}, resource.Snapshot{})
	assert.Equal(t, HealthWarning, h.Status)
	assert.Len(t, h.Issues, 1)
}

func TestAssessHealth_LowResolutionRateIsCritical(t *testing.T) {
	h := AssessHealth(Stats{Total: 4, Resolved: 1}, resource.Snapshot{})
	assert.Equal(t, HealthCritical, h.Status)
}

func TestAssessHealth_MemoryWarns(t *testing.T) {
	h := AssessHealth(Stats{}, resource.Snapshot{MemoryPercent: 85})
	assert.Equal(t, HealthWarning, h.Status)
}

func TestAssessHealth_DiskIsCritical(t *testing.T) {
	h := AssessHealth(Stats{}, resource.Snapshot{DiskPercent: 95})
	assert.Equal(t, HealthCritical, h.Status)
}

func TestAssessHealth_CriticalSticks(t *testing.T) {
	// Disk critical plus memory warning stays critical.
	h := AssessHealth(Stats{}, resource.Snapshot{MemoryPercent: 85, DiskPercent: 95})
	assert.Equal(t, HealthCritical, h.Status)
	assert.Len(t, h.Issues, 2)
}
