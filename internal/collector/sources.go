package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/parsers"
)

// Source names used in logs and status output.
const (
	SourceProcess = "process"
	SourceCPU     = "cpu"
	SourceMemory  = "memory"
	SourceGPU     = "gpu"
	SourceNetwork = "network"
)

// ErrUnsupported marks a source the platform can never serve. Its worker
// stops after reporting it once.
var ErrUnsupported = stderrors.New("source not supported on this platform")

// ProcessList is the process source payload. Records never change after
// the payload is completed.
type ProcessList struct {
	Records   []ProcessRecord
	SystemCPU float64
	Truncated bool
	Partial   bool
}

// CPUSample holds per-process CPU normalized by core count plus the
// system-wide percentage.
type CPUSample struct {
	PerPID    map[int]float64
	System    float64
	HasSystem bool
	Partial   bool
}

// MemorySample holds per-process resident bytes plus system used%.
type MemorySample struct {
	PerPID    map[int]int64
	System    float64
	HasSystem bool
	Partial   bool
}

// GPUSample is the whole-system GPU status shown on every row.
type GPUSample struct {
	Status    string
	Percent   float64
	Estimated bool
}

// NetworkSample holds per-process byte rates and the summary lines.
type NetworkSample struct {
	Rates      map[int]float64
	Summary    SystemSummary
	PerProcess bool
	Partial    bool
}

func unsupported(source string, p Platform) error {
	e := errors.NewUnsupported(source, string(p))
	e.Cause = ErrUnsupported
	return e
}

// parseOutcome sorts a parser error into partial data (budget ran out
// mid-parse) or a real parse failure.
func parseOutcome(ctx context.Context, err error, what string) (partial bool, failure error) {
	if err == nil {
		return false, nil
	}
	if ctx.Err() != nil {
		return true, nil
	}
	return false, errors.WrapWithCode(err, errors.ErrParse,
		"Failed to parse "+what,
		"Run with PROCMON_DEBUG=1 to see the raw command output")
}

func (c *Collector) collectProcesses(ctx context.Context, now time.Time) (ProcessList, error) {
	out, err := c.runner.Execute(ctx, c.cmds.ProcessTable)
	if err != nil {
		return ProcessList{}, err
	}

	text := string(out)
	if c.cmds.SampleMarker != "" {
		text = parsers.LastSample(text, c.cmds.SampleMarker)
	}

	rows, err := parsers.ParseProcessTable(ctx, text, parsers.ProcessTableOptions{
		Cores:          c.coreCount(ctx),
		BareMemoryUnit: c.cmds.TableMemoryUnit,
		MaxRows:        c.cfg.MaxProcesses,
	})

	var list ProcessList
	if stderrors.Is(err, parsers.ErrRowLimit) {
		list.Truncated = true
	} else {
		partial, failure := parseOutcome(ctx, err, "the process table")
		if failure != nil {
			return ProcessList{}, failure
		}
		list.Partial = partial
	}

	if len(rows) == 0 && !list.Partial {
		return ProcessList{}, errors.New(errors.ErrParse,
			"Process table came back empty",
			fmt.Sprintf("Check that '%s' works in a terminal", c.cmds.ProcessTable))
	}

	if c.platform == PlatformDarwin {
		if v, err := parsers.ParseTopCPU(text); err == nil {
			list.SystemCPU = v
		}
	}

	list.Records = make([]ProcessRecord, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			list.Partial = true
			break
		}
		list.Records = append(list.Records, ProcessRecord{
			PID:            row.PID,
			Name:           row.Name,
			CPU:            row.CPU,
			MemoryBytes:    row.MemoryBytes,
			GPU:            GPUUnavailable,
			RuntimeSeconds: row.RuntimeSeconds,
			Class:          c.classifier.Classify(row.PID, row.Name),
		})
	}

	return list, nil
}

func (c *Collector) collectCPU(ctx context.Context, now time.Time) (CPUSample, error) {
	out, err := c.runner.Execute(ctx, c.cmds.CPUPerPID)
	if err != nil {
		return CPUSample{}, err
	}

	raw, err := parsers.ParsePIDValues(ctx, string(out))
	partial, failure := parseOutcome(ctx, err, "per-process CPU")
	if failure != nil {
		return CPUSample{}, failure
	}

	cores := float64(c.coreCount(ctx))
	sample := CPUSample{PerPID: make(map[int]float64, len(raw)), Partial: partial}
	for pid, v := range raw {
		sample.PerPID[pid] = clampCPU(v / cores)
	}

	sys, err := c.cpuCache.Get(now, func() (float64, error) { return c.systemCPU(ctx, now) })
	if err != nil {
		c.log.Debug("system CPU unavailable: %v", err)
	} else {
		sample.System, sample.HasSystem = sys, true
	}

	return sample, nil
}

func (c *Collector) systemCPU(ctx context.Context, now time.Time) (float64, error) {
	out, err := c.runShared(ctx, now, c.cmds.SystemCPU)
	if err != nil {
		return 0, err
	}

	if c.platform == PlatformDarwin {
		return parsers.ParseTopCPU(out)
	}

	times, err := parsers.ParseLinuxCPU(out)
	if err != nil {
		return 0, err
	}

	// First reading has no previous sample; the zero value gives the
	// average since boot.
	c.cpuMu.Lock()
	prev := c.prevCPU
	c.prevCPU = times
	c.cpuMu.Unlock()

	return times.UsageSince(prev), nil
}

func (c *Collector) collectMemory(ctx context.Context, now time.Time) (MemorySample, error) {
	out, err := c.runner.Execute(ctx, c.cmds.MemPerPID)
	if err != nil {
		return MemorySample{}, err
	}

	raw, err := parsers.ParsePIDValues(ctx, string(out))
	partial, failure := parseOutcome(ctx, err, "per-process memory")
	if failure != nil {
		return MemorySample{}, failure
	}

	unit := c.cmds.MemPerPIDUnit
	if unit <= 0 {
		unit = 1
	}
	sample := MemorySample{PerPID: make(map[int]int64, len(raw)), Partial: partial}
	for pid, v := range raw {
		sample.PerPID[pid] = int64(v) * unit
	}

	sys, err := c.memCache.Get(now, func() (float64, error) { return c.systemMemory(ctx) })
	if err != nil {
		c.log.Debug("system memory unavailable: %v", err)
	} else {
		sample.System, sample.HasSystem = sys, true
	}

	return sample, nil
}

func (c *Collector) systemMemory(ctx context.Context) (float64, error) {
	out, err := c.runner.Execute(ctx, c.cmds.SystemMemory)
	if err != nil {
		return 0, err
	}

	if c.platform == PlatformDarwin {
		return parsers.ParseVMStat(string(out))
	}

	info, err := parsers.ParseLinuxMemory(string(out))
	if err != nil {
		return 0, err
	}
	return info.UsedPercent(), nil
}

func (c *Collector) collectGPU(ctx context.Context, now time.Time) (GPUSample, error) {
	return c.gpuCache.Get(now, func() (GPUSample, error) { return c.readGPU(ctx) })
}

// readGPU uses the precise reading until it fails once, then the
// heuristic estimate for the rest of the session.
func (c *Collector) readGPU(ctx context.Context) (GPUSample, error) {
	if c.cmds.GPU != "" && !c.gpuFallback.Load() {
		pct, err := c.preciseGPU(ctx)
		if err == nil {
			return GPUSample{Status: fmt.Sprintf("%.0f%%", pct), Percent: pct}, nil
		}
		if ctx.Err() != nil {
			return GPUSample{}, err
		}
		c.gpuFallback.Store(true)
		c.log.Debug("precise GPU reading unavailable, switching to estimate: %v", err)
	}

	if c.cmds.GPUFallback == "" {
		return GPUSample{}, unsupported(SourceGPU, c.platform)
	}

	out, err := c.runner.Execute(ctx, c.cmds.GPUFallback)
	if err != nil {
		return GPUSample{}, err
	}
	rows, err := parsers.ParseNamedCPU(ctx, string(out))
	if _, failure := parseOutcome(ctx, err, "the GPU estimate input"); failure != nil {
		return GPUSample{}, failure
	}

	return GPUSample{
		Status:    c.estimator.Estimate(rows),
		Percent:   EstimateGPUPercent(rows),
		Estimated: true,
	}, nil
}

func (c *Collector) preciseGPU(ctx context.Context) (float64, error) {
	out, err := c.runner.Execute(ctx, c.cmds.GPU)
	if err != nil {
		return 0, err
	}

	if c.platform == PlatformDarwin {
		return parsers.ParseGPUResidency(string(out))
	}

	reading, err := parsers.ParseNvidiaSMI(string(out))
	if err != nil {
		return 0, err
	}
	return reading.Percent, nil
}

func (c *Collector) collectNetwork(ctx context.Context, now time.Time) (NetworkSample, error) {
	var sample NetworkSample

	if c.cmds.Network != "" {
		out, err := c.runner.Execute(ctx, c.cmds.Network)
		if err != nil {
			return NetworkSample{}, err
		}
		counters, err := parsers.ParseNettop(ctx, string(out))
		partial, failure := parseOutcome(ctx, err, "per-process network counters")
		if failure != nil {
			return NetworkSample{}, failure
		}

		sample.PerProcess = true
		sample.Partial = partial
		sample.Rates = make(map[int]float64, len(counters))
		for pid, n := range counters {
			sample.Rates[pid] = c.rates.ComputeRate(PIDKey(pid), n.Total(), now)
		}
	} else {
		c.netGapOnce.Do(func() {
			c.log.Debug("per-process network counters are not available on %s; rows show 0", c.platform)
		})
	}

	summary, err := c.summaryCache.Get(now, func() (SystemSummary, error) { return c.readSummary(ctx, now) })
	if err != nil {
		if !sample.PerProcess {
			return NetworkSample{}, err
		}
		c.log.Debug("system summary unavailable: %v", err)
	}
	sample.Summary = summary

	return sample, nil
}

func (c *Collector) readSummary(ctx context.Context, now time.Time) (SystemSummary, error) {
	var parsed parsers.SystemSummary

	if c.cmds.Summary != "" {
		out, err := c.runShared(ctx, now, c.cmds.Summary)
		if err != nil {
			return SystemSummary{}, err
		}
		parsed = parsers.ParseSystemSummary(out)
	} else {
		s, err := c.host.Summary(ctx)
		if err != nil {
			return SystemSummary{}, errors.WrapWithCode(err, errors.ErrGateway,
				"Failed to read host network and disk counters", "")
		}
		parsed = s
	}

	haveRates := parsed.Network.Present && c.rates.Seen(SystemInKey)
	in := c.rates.ComputeRate(SystemInKey, parsed.Network.InBytes, now)
	out := c.rates.ComputeRate(SystemOutKey, parsed.Network.OutBytes, now)

	return FormatSummary(parsed, in, out, haveRates), nil
}

// runShared runs cmd, sharing one cached result when it is the summary
// command (top's header serves both CPU% and the summary on macOS).
func (c *Collector) runShared(ctx context.Context, now time.Time, cmd string) (string, error) {
	if cmd == "" {
		return "", unsupported("system", c.platform)
	}
	fetch := func() (string, error) {
		out, err := c.runner.Execute(ctx, cmd)
		return string(out), err
	}
	if cmd != c.cmds.Summary {
		return fetch()
	}
	return c.headerCache.Get(now, fetch)
}

// coreCount resolves the logical CPU count once: gopsutil, then the
// platform's command, then the Go runtime.
func (c *Collector) coreCount(ctx context.Context) int {
	c.coresOnce.Do(func() {
		n, err := c.host.CoreCount(ctx)
		if (err != nil || n < 1) && c.cmds.CoreCount != "" {
			if out, rerr := c.runner.Execute(ctx, c.cmds.CoreCount); rerr == nil {
				if v, perr := parsers.ParseInt(string(out)); perr == nil {
					n = v
				}
			}
		}
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.cores = n
	})
	return c.cores
}

func clampCPU(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > parsers.MaxCPUPercent:
		return parsers.MaxCPUPercent
	default:
		return v
	}
}
