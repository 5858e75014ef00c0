// Package monitor samples process and host load for admission decisions and
// the public health probe.
package monitor

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	memoryCeiling = 0.80
	cpuCeiling    = 0.90
)

// Snapshot is a point-in-time load view. Healthy is true only when memory,
// CPU, and the active-work count all sit under their ceilings.
type Snapshot struct {
	MemoryUsedRatio float64 `json:"memory_used_ratio"`
	CPUBusyRatio    float64 `json:"cpu_busy_ratio"`
	ActiveWork      int     `json:"active_work_count"`
	QueueDepth      int     `json:"queue_depth"`
	Healthy         bool    `json:"healthy"`
}

// Sampler reads host memory and CPU pressure as ratios in [0,1].
type Sampler interface {
	Sample(ctx context.Context) (memRatio, cpuRatio float64, err error)
}

// Gauges report the scheduler's current work volume.
type Gauges interface {
	ActiveWork() int
	QueueDepth() int
}

// Monitor combines host sampling with work gauges and applies the health
// thresholds. Reads only, no side effects.
type Monitor struct {
	sampler Sampler
	gauges  Gauges
	ceiling int
	log     *slog.Logger
}

func New(sampler Sampler, gauges Gauges, concurrencyCeiling int, log *slog.Logger) *Monitor {
	if sampler == nil {
		sampler = NewHostSampler()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{sampler: sampler, gauges: gauges, ceiling: concurrencyCeiling, log: log}
}

// Snapshot samples the host and reads the gauges. A host that cannot be
// sampled cannot prove it is under its ceilings, so a sampling error reports
// unhealthy.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	s := Snapshot{
		ActiveWork: m.gauges.ActiveWork(),
		QueueDepth: m.gauges.QueueDepth(),
	}

	memRatio, cpuRatio, err := m.sampler.Sample(ctx)
	if err != nil {
		m.log.Warn("monitor.sample.fail", "error", err)
		return s
	}
	s.MemoryUsedRatio = memRatio
	s.CPUBusyRatio = cpuRatio
	s.Healthy = memRatio < memoryCeiling && cpuRatio < cpuCeiling && s.ActiveWork < m.ceiling
	return s
}

type hostSampler struct{}

// NewHostSampler reads load from the host. The CPU busy ratio is measured
// over the interval since the previous sample, so the first reading of a
// fresh process reports zero.
func NewHostSampler() Sampler { return hostSampler{} }

func (hostSampler) Sample(ctx context.Context) (float64, float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	busy, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, err
	}
	var cpuRatio float64
	if len(busy) > 0 {
		cpuRatio = busy[0] / 100
	}
	return vm.UsedPercent / 100, cpuRatio, nil
}
