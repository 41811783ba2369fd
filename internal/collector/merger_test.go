package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mergeNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func processView() SourceView[ProcessList] {
	return SourceView[ProcessList]{
		State:      StateCompleted,
		HasPayload: true,
		UpdatedAt:  mergeNow.Add(-time.Second),
		Payload: ProcessList{
			SystemCPU: 12.5,
			Records: []ProcessRecord{
				{PID: 1, Name: "launchd", CPU: 0.1, MemoryBytes: 1 << 20, GPU: GPUUnavailable, RuntimeSeconds: 100, Class: ClassSystem},
				{PID: 500, Name: "Safari", CPU: 3.0, MemoryBytes: 200 << 20, GPU: GPUUnavailable, RuntimeSeconds: 60},
			},
		},
	}
}

func completed[T any](payload T, age time.Duration) SourceView[T] {
	return SourceView[T]{State: StateCompleted, HasPayload: true, UpdatedAt: mergeNow.Add(-age), Payload: payload}
}

func failedNever[T any]() SourceView[T] {
	return SourceView[T]{State: StateFailed, Err: errors.New("command failed")}
}

func TestMerger_NoProcessData(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	_, err := m.Merge(
		SourceView[ProcessList]{State: StateRunning},
		failedNever[CPUSample](), failedNever[MemorySample](), failedNever[GPUSample](), failedNever[NetworkSample](),
		mergeNow,
	)
	assert.ErrorIs(t, err, ErrNoProcessData)
}

func TestMerger_OverlaysAllFailed(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	snap, err := m.Merge(processView(),
		failedNever[CPUSample](), failedNever[MemorySample](), failedNever[GPUSample](), failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)

	require.Len(t, snap.Processes, 2)
	assert.Equal(t, 12.5, snap.CPUPercent)
	assert.Equal(t, 0.0, snap.MemPercent)
	assert.Equal(t, GPUUnavailable, snap.GPU)
	assert.Equal(t, SystemSummary{
		Network:       NetworkPlaceholder,
		VirtualMemory: VMPlaceholder,
		Disk:          DiskPlaceholder,
	}, snap.Summary)

	safari := snap.Processes[500]
	assert.Equal(t, 3.0, safari.CPU)
	assert.Equal(t, int64(200<<20), safari.MemoryBytes)
	assert.Equal(t, GPUUnavailable, safari.GPU)
	assert.Equal(t, 0.0, safari.NetRate)
	assert.Equal(t, mergeNow, snap.CollectedAt)
}

func TestMerger_FreshOverlays(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	snap, err := m.Merge(processView(),
		completed(CPUSample{PerPID: map[int]float64{500: 7.5}, System: 40, HasSystem: true}, time.Second),
		completed(MemorySample{PerPID: map[int]int64{1: 2 << 20}, System: 66.6, HasSystem: true}, time.Second),
		completed(GPUSample{Status: "12%", Percent: 12}, time.Second),
		completed(NetworkSample{
			Rates:   map[int]float64{500: 2048},
			Summary: SystemSummary{Network: "Network: 1G downloaded", Disk: "Disk Activity: 5G read"},
		}, time.Second),
		mergeNow,
	)
	require.NoError(t, err)

	assert.Equal(t, 40.0, snap.CPUPercent)
	assert.Equal(t, 66.6, snap.MemPercent)
	assert.Equal(t, "12%", snap.GPU)
	assert.Equal(t, "Network: 1G downloaded", snap.Summary.Network)
	assert.Equal(t, VMPlaceholder, snap.Summary.VirtualMemory, "missing lines fall back to placeholders")

	launchd := snap.Processes[1]
	assert.Equal(t, 0.1, launchd.CPU, "pid missing from overlay keeps table value")
	assert.Equal(t, int64(2<<20), launchd.MemoryBytes)
	assert.Equal(t, "12%", launchd.GPU)
	assert.Equal(t, 0.0, launchd.NetRate)

	safari := snap.Processes[500]
	assert.Equal(t, 7.5, safari.CPU)
	assert.Equal(t, int64(200<<20), safari.MemoryBytes)
	assert.Equal(t, 2048.0, safari.NetRate)
}

func TestMerger_StaleOverlaysIgnored(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	snap, err := m.Merge(processView(),
		completed(CPUSample{PerPID: map[int]float64{500: 7.5}, System: 40, HasSystem: true}, 11*time.Second),
		completed(MemorySample{System: 50, HasSystem: true}, 30*time.Second),
		completed(GPUSample{Status: "99%"}, 11*time.Second),
		completed(NetworkSample{Rates: map[int]float64{500: 1}}, 11*time.Second),
		mergeNow,
	)
	require.NoError(t, err)

	assert.Equal(t, 12.5, snap.CPUPercent)
	assert.Equal(t, 0.0, snap.MemPercent)
	assert.Equal(t, GPUUnavailable, snap.GPU)
	assert.Equal(t, 3.0, snap.Processes[500].CPU)
	assert.Equal(t, 0.0, snap.Processes[500].NetRate)
}

func TestMerger_FailedWithOldPayloadIgnored(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	gpu := completed(GPUSample{Status: "50%"}, time.Second)
	gpu.State = StateFailed
	gpu.Stale = true

	snap, err := m.Merge(processView(),
		failedNever[CPUSample](), failedNever[MemorySample](), gpu, failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)
	assert.Equal(t, GPUUnavailable, snap.GPU)
}

func TestMerger_RunningLeavesDefaults(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	gpu := completed(GPUSample{Status: "~20%"}, 3*time.Second)
	gpu.State = StateRunning

	snap, err := m.Merge(processView(),
		failedNever[CPUSample](), failedNever[MemorySample](), gpu, failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)
	assert.Equal(t, GPUUnavailable, snap.GPU)

	gpu.State = StateCompleted
	snap, err = m.Merge(processView(),
		failedNever[CPUSample](), failedNever[MemorySample](), gpu, failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)
	assert.Equal(t, "~20%", snap.GPU)
}

func TestMerger_FlagsPropagate(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	proc := processView()
	proc.Payload.Truncated = true

	snap, err := m.Merge(proc,
		completed(CPUSample{Partial: true}, time.Second),
		failedNever[MemorySample](), failedNever[GPUSample](), failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)
	assert.True(t, snap.Truncated)
	assert.True(t, snap.Partial)
}

func TestMerger_DoesNotMutateSourcePayload(t *testing.T) {
	m := Merger{StaleAfter: 10 * time.Second}
	proc := processView()

	_, err := m.Merge(proc,
		completed(CPUSample{PerPID: map[int]float64{500: 99}}, time.Second),
		failedNever[MemorySample](), failedNever[GPUSample](), failedNever[NetworkSample](),
		mergeNow,
	)
	require.NoError(t, err)
	assert.Equal(t, 3.0, proc.Payload.Records[1].CPU)
}
