package monitor

import (
	"context"
	"errors"
	"testing"
)

type fakeSampler struct {
	mem, cpu float64
	err      error
}

func (f fakeSampler) Sample(context.Context) (float64, float64, error) {
	return f.mem, f.cpu, f.err
}

type fakeGauges struct {
	active, depth int
}

func (f fakeGauges) ActiveWork() int { return f.active }
func (f fakeGauges) QueueDepth() int { return f.depth }

// TestSnapshotHealthThresholds checks each ceiling independently.
func TestSnapshotHealthThresholds(t *testing.T) {
	tests := []struct {
		name    string
		sampler fakeSampler
		gauges  fakeGauges
		healthy bool
	}{
		{name: "all under ceilings", sampler: fakeSampler{mem: 0.50, cpu: 0.40}, gauges: fakeGauges{active: 10, depth: 3}, healthy: true},
		{name: "memory at ceiling", sampler: fakeSampler{mem: 0.80, cpu: 0.40}, gauges: fakeGauges{active: 10}, healthy: false},
		{name: "cpu at ceiling", sampler: fakeSampler{mem: 0.50, cpu: 0.90}, gauges: fakeGauges{active: 10}, healthy: false},
		{name: "active work at ceiling", sampler: fakeSampler{mem: 0.50, cpu: 0.40}, gauges: fakeGauges{active: 50}, healthy: false},
		{name: "just under every ceiling", sampler: fakeSampler{mem: 0.79, cpu: 0.89}, gauges: fakeGauges{active: 49}, healthy: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.sampler, tt.gauges, 50, nil)
			got := m.Snapshot(context.Background())
			if got.Healthy != tt.healthy {
				t.Errorf("Healthy = %v, want %v (snapshot %+v)", got.Healthy, tt.healthy, got)
			}
		})
	}
}

// TestSnapshotCarriesGauges checks that work volume passes through.
func TestSnapshotCarriesGauges(t *testing.T) {
	m := New(fakeSampler{mem: 0.10, cpu: 0.10}, fakeGauges{active: 7, depth: 42}, 50, nil)
	got := m.Snapshot(context.Background())
	if got.ActiveWork != 7 || got.QueueDepth != 42 {
		t.Errorf("gauges = %d/%d, want 7/42", got.ActiveWork, got.QueueDepth)
	}
	if got.MemoryUsedRatio != 0.10 || got.CPUBusyRatio != 0.10 {
		t.Errorf("ratios = %v/%v, want 0.10/0.10", got.MemoryUsedRatio, got.CPUBusyRatio)
	}
}

// TestSnapshotSamplerFailure checks that an unreadable host reads unhealthy.
func TestSnapshotSamplerFailure(t *testing.T) {
	m := New(fakeSampler{err: errors.New("proc unavailable")}, fakeGauges{active: 0}, 50, nil)
	got := m.Snapshot(context.Background())
	if got.Healthy {
		t.Error("unsampleable host must read unhealthy")
	}
	if got.ActiveWork != 0 {
		t.Errorf("gauges must still be reported, got %+v", got)
	}
}
