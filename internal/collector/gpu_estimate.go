package collector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rileyhilliard/procmon/internal/parsers"
)

const (
	windowServerName      = "WindowServer"
	windowServerThreshold = 15.0
	graphicsAppWeight     = 0.5
	maxGraphicsApps       = 5
	maxEstimatedGPU       = 95.0
	labelEvery            = 10
)

// GraphicsApps are process name fragments of GPU-heavy applications.
var GraphicsApps = []string{
	"Safari", "Chrome", "Firefox", "Final Cut", "Motion", "Compressor",
	"Logic", "GarageBand", "Photoshop", "Illustrator", "Premiere",
	"After Effects", "Blender", "Unity", "Unreal", "Steam",
}

// GPUEstimator guesses GPU load from compositor and graphics-app CPU when
// no GPU counter can be read.
type GPUEstimator struct {
	calls atomic.Int64
}

// Estimate returns "~N%" and, on every tenth call, a qualitative label
// instead so the column visibly moves even on a quiet machine.
func (e *GPUEstimator) Estimate(rows []parsers.NamedCPU) string {
	n := e.calls.Add(1)
	pct := EstimateGPUPercent(rows)
	if n%labelEvery == 0 {
		return GPULabel(pct)
	}
	return fmt.Sprintf("~%.0f%%", pct)
}

// EstimateGPUPercent applies the heuristic: WindowServer CPU doubled when
// above 15%, plus half the CPU of up to five graphics apps, capped at 95.
func EstimateGPUPercent(rows []parsers.NamedCPU) float64 {
	var ws, graphics float64
	apps := 0

	for _, r := range rows {
		if strings.Contains(r.Name, windowServerName) {
			if ws == 0 {
				ws = r.CPU
			}
			continue
		}
		if apps < maxGraphicsApps && containsAny(r.Name, GraphicsApps) {
			graphics += r.CPU
			apps++
		}
	}

	est := 0.0
	if ws > windowServerThreshold {
		est = ws * 2
	}
	est += graphics * graphicsAppWeight

	switch {
	case est > maxEstimatedGPU:
		est = maxEstimatedGPU
	case est < 0:
		est = 0
	}
	return est
}

// GPULabel buckets an estimate into Idle/Light/Active/Busy/Heavy.
func GPULabel(pct float64) string {
	switch {
	case pct < 5:
		return "Idle"
	case pct < 25:
		return "Light"
	case pct < 50:
		return "Active"
	case pct < 75:
		return "Busy"
	default:
		return "Heavy"
	}
}

// GPUPercent reads "12%" or "~12%". Qualitative labels and "N/A" carry no
// number.
func GPUPercent(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "~"), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
