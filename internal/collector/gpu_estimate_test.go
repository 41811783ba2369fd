package collector

import (
	"testing"

	"github.com/rileyhilliard/procmon/internal/parsers"
	"github.com/stretchr/testify/assert"
)

func TestEstimateGPUPercent(t *testing.T) {
	tests := []struct {
		name string
		rows []parsers.NamedCPU
		want float64
	}{
		{
			name: "idle machine",
			rows: []parsers.NamedCPU{{PID: 1, CPU: 0.1, Name: "launchd"}},
			want: 0,
		},
		{
			name: "window server below threshold",
			rows: []parsers.NamedCPU{{PID: 400, CPU: 12, Name: "/System/Library/WindowServer"}},
			want: 0,
		},
		{
			name: "window server doubled",
			rows: []parsers.NamedCPU{{PID: 400, CPU: 20, Name: "WindowServer"}},
			want: 40,
		},
		{
			name: "graphics apps at half weight",
			rows: []parsers.NamedCPU{
				{PID: 500, CPU: 10, Name: "Safari"},
				{PID: 501, CPU: 30, Name: "Blender"},
				{PID: 502, CPU: 50, Name: "zsh"},
			},
			want: 20,
		},
		{
			name: "at most five graphics apps",
			rows: []parsers.NamedCPU{
				{CPU: 2, Name: "Safari"},
				{CPU: 2, Name: "Google Chrome"},
				{CPU: 2, Name: "Firefox"},
				{CPU: 2, Name: "Logic Pro"},
				{CPU: 2, Name: "Steam"},
				{CPU: 100, Name: "Unity"},
			},
			want: 5,
		},
		{
			name: "capped",
			rows: []parsers.NamedCPU{
				{CPU: 60, Name: "WindowServer"},
				{CPU: 80, Name: "Final Cut Pro"},
			},
			want: 95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateGPUPercent(tt.rows), 0.001)
		})
	}
}

func TestGPUEstimator_LabelsEveryTenthCall(t *testing.T) {
	var e GPUEstimator
	rows := []parsers.NamedCPU{{CPU: 20, Name: "WindowServer"}}

	for i := 1; i < 10; i++ {
		assert.Equal(t, "~40%", e.Estimate(rows), "call %d", i)
	}
	assert.Equal(t, "Active", e.Estimate(rows))
	assert.Equal(t, "~40%", e.Estimate(rows))
}

func TestGPULabel(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "Idle"},
		{4.9, "Idle"},
		{5, "Light"},
		{25, "Active"},
		{50, "Busy"},
		{75, "Heavy"},
		{95, "Heavy"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GPULabel(tt.pct))
	}
}

func TestGPUPercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"~45%", 45, true},
		{"12%", 12, true},
		{" 3.5% ", 3.5, true},
		{GPUUnavailable, 0, false},
		{"Busy", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := GPUPercent(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
