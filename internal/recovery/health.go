package recovery

import (
	"fmt"

	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

// Health grades for AssessHealth.
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// Thresholds for health grading.
const (
	healthErrorCountWarning = 10
	healthMinResolutionRate = 0.5
	healthMemoryWarningPct  = 80.0
	healthDiskCriticalPct   = 90.0
)

// SystemHealth is a combined view of error-handling effectiveness and
// current resource pressure.
type SystemHealth struct {
	Status     string            `json:"status"`
	Issues     []string          `json:"issues,omitempty"`
	ErrorStats Stats             `json:"error_stats"`
	Resources  resource.Snapshot `json:"resources"`
}

// AssessHealth grades the system. A low resolution rate over a real
// error history is critical; a busy error log or high memory is a
// warning; a nearly full disk is critical.
func AssessHealth(stats Stats, snap resource.Snapshot) SystemHealth {
	h := SystemHealth{Status: HealthHealthy, ErrorStats: stats, Resources: snap}

	degrade := func(to string, issue string) {
		h.Issues = append(h.Issues, issue)
		if to == HealthCritical {
			h.Status = HealthCritical
		} else if h.Status == HealthHealthy {
			h.Status = HealthWarning
		}
	}

	if stats.Total > healthErrorCountWarning {
		degrade(HealthWarning, fmt.Sprintf("high error count: %d", stats.Total))
	}
	if stats.Total > 0 && stats.ResolutionRate() < healthMinResolutionRate {
		degrade(HealthCritical, fmt.Sprintf("low recovery resolution rate: %.0f%%", stats.ResolutionRate()*100))
	}
	if snap.MemoryPercent >= healthMemoryWarningPct {
		degrade(HealthWarning, fmt.Sprintf("memory usage at %.1f%%", snap.MemoryPercent))
	}
	if snap.DiskPercent >= healthDiskCriticalPct {
		degrade(HealthCritical, fmt.Sprintf("disk usage at %.1f%%", snap.DiskPercent))
	}

	return h
}
