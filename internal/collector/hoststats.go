package collector

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/procmon/internal/parsers"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// HostStats reads host-wide counters that don't need an external command.
type HostStats interface {
	// CoreCount returns the number of logical CPUs.
	CoreCount(ctx context.Context) (int, error)
	// Summary returns cumulative network, VM and disk counters.
	Summary(ctx context.Context) (parsers.SystemSummary, error)
	// Specs returns static machine details.
	Specs(ctx context.Context) (HostSpecs, error)
}

// HostSpecs are the static details shown in the specs panel.
type HostSpecs struct {
	Hostname    string        `json:"hostname" yaml:"hostname"`
	Machine     string        `json:"machine" yaml:"machine"`
	Processor   string        `json:"processor" yaml:"processor"`
	Cores       int           `json:"cores" yaml:"cores"`
	MemoryBytes uint64        `json:"memory_bytes" yaml:"memory_bytes"`
	OS          string        `json:"os" yaml:"os"`
	Kernel      string        `json:"kernel" yaml:"kernel"`
	Uptime      time.Duration `json:"uptime" yaml:"uptime"`
}

// SystemHost implements HostStats with gopsutil.
type SystemHost struct{}

// CoreCount returns the logical CPU count, falling back to the Go runtime.
func (SystemHost) CoreCount(ctx context.Context) (int, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil || n < 1 {
		return runtime.NumCPU(), err
	}
	return n, nil
}

// Summary builds the same structure top's header parses into, from
// interface, disk and swap counters.
func (SystemHost) Summary(ctx context.Context) (parsers.SystemSummary, error) {
	var s parsers.SystemSummary

	nics, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return s, err
	}
	if len(nics) > 0 {
		s.Network = parsers.NetworkTotals{
			Present:  true,
			InBytes:  int64(nics[0].BytesRecv),
			OutBytes: int64(nics[0].BytesSent),
			InText:   humanize.IBytes(nics[0].BytesRecv),
			OutText:  humanize.IBytes(nics[0].BytesSent),
		}
	}

	if disks, err := disk.IOCountersWithContext(ctx); err == nil {
		var read, written uint64
		for _, d := range disks {
			read += d.ReadBytes
			written += d.WriteBytes
		}
		s.Disk = parsers.DiskStats{
			Present:      true,
			ReadBytes:    int64(read),
			WrittenBytes: int64(written),
			ReadText:     humanize.IBytes(read),
			WrittenText:  humanize.IBytes(written),
		}
	}

	vm := parsers.VMStats{Present: true}
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil && v.CommittedAS > 0 {
		vm.AppsVSize = humanize.IBytes(v.CommittedAS)
	}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		page := uint64(os.Getpagesize())
		vm.SwapIns = int64(sw.Sin / page)
		vm.SwapOuts = int64(sw.Sout / page)
	}
	s.VM = vm

	return s, nil
}

// Specs reads host, CPU and memory details.
func (h SystemHost) Specs(ctx context.Context) (HostSpecs, error) {
	var specs HostSpecs

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return specs, err
	}
	specs.Hostname = info.Hostname
	specs.Machine = info.KernelArch
	specs.OS = info.Platform + " " + info.PlatformVersion
	specs.Kernel = info.KernelVersion
	specs.Uptime = time.Duration(info.Uptime) * time.Second

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		specs.Processor = cpus[0].ModelName
	}
	specs.Cores, _ = h.CoreCount(ctx)
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		specs.MemoryBytes = v.Total
	}

	return specs, nil
}
