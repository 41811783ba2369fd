package parsers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable means the GPU tool output carried no usable reading.
// Callers switch to the heuristic estimator when they see it.
var ErrUnparseable = errors.New("gpu output unparseable")

var residencyRe = regexp.MustCompile(`GPU (?:HW )?active residency:\s*([0-9]+(?:\.[0-9]+)?)%`)

// ParseGPUResidency extracts the percentage following "GPU active
// residency:" in powermetrics output. Permission errors ("must be invoked
// as the superuser"), near-empty output and a missing label all return
// ErrUnparseable.
func ParseGPUResidency(output string) (float64, error) {
	if len(strings.TrimSpace(output)) < 10 || strings.Contains(output, "superuser") {
		return 0, ErrUnparseable
	}

	m := residencyRe.FindStringSubmatch(output)
	if m == nil {
		return 0, ErrUnparseable
	}

	v, ok := parseFinite(m[1])
	if !ok {
		return 0, ErrUnparseable
	}
	return v, nil
}

// GPUReading is one GPU's state from nvidia-smi.
type GPUReading struct {
	Name        string
	Percent     float64
	MemoryUsed  int64
	MemoryTotal int64
}

// NvidiaSMIQuery is the nvidia-smi invocation ParseNvidiaSMI expects.
const NvidiaSMIQuery = "nvidia-smi --query-gpu=name,utilization.gpu,memory.used,memory.total --format=csv,noheader,nounits"

// ParseNvidiaSMI parses the first GPU from NvidiaSMIQuery output.
// Machines without a usable NVIDIA GPU return ErrUnparseable.
func ParseNvidiaSMI(output string) (*GPUReading, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, ErrUnparseable
	}

	lower := strings.ToLower(output)
	for _, marker := range []string{"no devices", "not found", "failed", "error"} {
		if strings.Contains(lower, marker) {
			return nil, ErrUnparseable
		}
	}

	// Only the first GPU is reported.
	line := strings.SplitN(output, "\n", 2)[0]
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return nil, fmt.Errorf("nvidia-smi output has insufficient fields: expected 4, got %d", len(fields))
	}

	reading := &GPUReading{Name: strings.TrimSpace(fields[0])}

	utilStr := strings.TrimSpace(fields[1])
	if utilStr == "" || utilStr == "[N/A]" {
		return nil, ErrUnparseable
	}
	util, err := strconv.ParseFloat(utilStr, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU utilization '%s': %w", utilStr, err)
	}
	reading.Percent = util

	if v, ok := parseMiB(fields[2]); ok {
		reading.MemoryUsed = v
	}
	if v, ok := parseMiB(fields[3]); ok {
		reading.MemoryTotal = v
	}

	return reading, nil
}

func parseMiB(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "[N/A]" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v * 1024 * 1024, true
}
