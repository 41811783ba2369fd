package collector

import (
	"runtime"

	"github.com/rileyhilliard/procmon/internal/parsers"
)

// Platform selects the command set for the host OS.
type Platform string

const (
	PlatformDarwin Platform = "darwin"
	PlatformLinux  Platform = "linux"
)

// CurrentPlatform returns the platform procmon is running on. Anything
// that isn't macOS uses the Linux command set.
func CurrentPlatform() Platform {
	if runtime.GOOS == "darwin" {
		return PlatformDarwin
	}
	return PlatformLinux
}

// Commands are the gateway command lines each source runs. An empty
// command means the platform has no way to produce that reading.
type Commands struct {
	// ProcessTable prints "pid name... cpu mem time" rows.
	ProcessTable string
	// SampleMarker, when set, starts each sample in ProcessTable output;
	// only the last sample is parsed.
	SampleMarker string
	// TableMemoryUnit multiplies bare memory numbers in ProcessTable.
	TableMemoryUnit int64

	CPUPerPID     string
	MemPerPID     string
	MemPerPIDUnit int64

	// SystemCPU and SystemMemory give the header percentages.
	SystemCPU    string
	SystemMemory string

	GPU         string
	GPUFallback string

	// Network prints per-process byte counters.
	Network string
	// Summary prints the Networks/VM/Disks lines. Empty means the summary
	// comes from host counters instead.
	Summary string

	CoreCount string
}

// CommandsFor returns the command set for p.
func CommandsFor(p Platform) Commands {
	if p == PlatformDarwin {
		return Commands{
			ProcessTable:    "top -l 2 -s 1 -o cpu -stats pid,command,cpu,mem,time",
			SampleMarker:    "Processes:",
			TableMemoryUnit: 1,
			CPUPerPID:       "ps -eo pid,pcpu",
			MemPerPID:       "ps -eo pid,rss",
			MemPerPIDUnit:   1024,
			SystemCPU:       "top -l 1 -n 0",
			SystemMemory:    "vm_stat",
			GPU:             "powermetrics --samplers gpu_power -n1 -i100",
			GPUFallback:     "ps -eo pid,pcpu,comm",
			Network:         "nettop -P -L1 -x",
			Summary:         "top -l 1 -n 0",
			CoreCount:       "sysctl -n hw.ncpu",
		}
	}

	return Commands{
		ProcessTable:    "ps -eo pid,comm,pcpu,rss,etime",
		TableMemoryUnit: 1024,
		CPUPerPID:       "ps -eo pid,pcpu",
		MemPerPID:       "ps -eo pid,rss",
		MemPerPIDUnit:   1024,
		SystemCPU:       "cat /proc/stat",
		SystemMemory:    "cat /proc/meminfo",
		GPU:             parsers.NvidiaSMIQuery,
		GPUFallback:     "",
	}
}
