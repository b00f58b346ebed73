package resource

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// systemSample reads live utilization from the host. The CPU reading is
// the instantaneous percentage since the previous call (interval 0), so
// the very first reading of a process may be zero.
func systemSample() (float64, float64, float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reading memory stats: %w", err)
	}

	cpuPcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reading cpu stats: %w", err)
	}
	var cpuPct float64
	if len(cpuPcts) > 0 {
		cpuPct = cpuPcts[0]
	}

	du, err := disk.Usage("/")
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reading disk stats: %w", err)
	}

	return vm.UsedPercent, cpuPct, du.UsedPercent, nil
}
