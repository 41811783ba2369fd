package collector

import (
	"errors"
	"time"
)

// ErrNoProcessData is returned by Merge until the process source has
// completed at least once.
var ErrNoProcessData = errors.New("process list not collected yet")

// Placeholder summary lines used when the summary source has nothing.
const (
	NetworkPlaceholder = "Network: Active"
	VMPlaceholder      = "Virtual Memory: Active"
	DiskPlaceholder    = "Disk Activity: Active"
)

// Merger joins the five source slots into one snapshot. The process list
// decides which processes exist; the other sources only overlay fields.
type Merger struct {
	// StaleAfter is the oldest payload the merger will overlay.
	StaleAfter time.Duration
}

// Merge builds a snapshot from the source views. Sources that are Running,
// Failed, Idle, or older than StaleAfter leave their fields at the defaults parsed
// from the process table ("N/A" for GPU, 0 for network). Merge never blocks
// and never fails once a process list exists.
func (m Merger) Merge(
	proc SourceView[ProcessList],
	cpu SourceView[CPUSample],
	mem SourceView[MemorySample],
	gpu SourceView[GPUSample],
	net SourceView[NetworkSample],
	now time.Time,
) (Snapshot, error) {
	if !proc.HasPayload {
		return Snapshot{}, ErrNoProcessData
	}

	list := proc.Payload
	snap := Snapshot{
		Processes:   make(map[int]ProcessRecord, len(list.Records)),
		GPU:         GPUUnavailable,
		CollectedAt: now,
		Truncated:   list.Truncated,
		Partial:     list.Partial,
		Summary: SystemSummary{
			Network:       NetworkPlaceholder,
			VirtualMemory: VMPlaceholder,
			Disk:          DiskPlaceholder,
		},
	}

	useCPU := cpu.Usable(now, m.StaleAfter)
	useMem := mem.Usable(now, m.StaleAfter)
	useGPU := gpu.Usable(now, m.StaleAfter)
	useNet := net.Usable(now, m.StaleAfter)

	snap.CPUPercent = list.SystemCPU
	if useCPU {
		if cpu.Payload.HasSystem {
			snap.CPUPercent = cpu.Payload.System
		}
		snap.Partial = snap.Partial || cpu.Payload.Partial
	}
	if useMem {
		if mem.Payload.HasSystem {
			snap.MemPercent = mem.Payload.System
		}
		snap.Partial = snap.Partial || mem.Payload.Partial
	}
	if useGPU && gpu.Payload.Status != "" {
		snap.GPU = gpu.Payload.Status
	}
	if useNet {
		snap.Partial = snap.Partial || net.Payload.Partial
		if s := net.Payload.Summary; s.Network != "" || s.VirtualMemory != "" || s.Disk != "" {
			snap.Summary = fillSummary(s)
		}
	}

	for _, r := range list.Records {
		if useCPU {
			if v, ok := cpu.Payload.PerPID[r.PID]; ok {
				r.CPU = v
			}
		}
		if useMem {
			if v, ok := mem.Payload.PerPID[r.PID]; ok {
				r.MemoryBytes = v
			}
		}
		r.GPU = snap.GPU
		r.NetRate = 0
		if useNet {
			r.NetRate = net.Payload.Rates[r.PID]
		}
		snap.Processes[r.PID] = r
	}

	return snap, nil
}

func fillSummary(s SystemSummary) SystemSummary {
	if s.Network == "" {
		s.Network = NetworkPlaceholder
	}
	if s.VirtualMemory == "" {
		s.VirtualMemory = VMPlaceholder
	}
	if s.Disk == "" {
		s.Disk = DiskPlaceholder
	}
	return s
}
