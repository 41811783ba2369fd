package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateEngine_ComputeRate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	type sample struct {
		bytes int64
		at    time.Duration
		want  float64
	}

	tests := []struct {
		name    string
		samples []sample
	}{
		{
			name: "first sample is zero",
			samples: []sample{
				{bytes: 5000, at: 0, want: 0},
			},
		},
		{
			name: "steady growth",
			samples: []sample{
				{bytes: 1000, at: 0, want: 0},
				{bytes: 3048, at: time.Second, want: 2048},
				{bytes: 4048, at: 2 * time.Second, want: 1000},
			},
		},
		{
			name: "close sample returns zero and becomes the baseline",
			samples: []sample{
				{bytes: 0, at: 0, want: 0},
				{bytes: 1000, at: 100 * time.Millisecond, want: 0},
				{bytes: 1000 + 2048, at: 1100 * time.Millisecond, want: 2048},
			},
		},
		{
			name: "unchanged counter inside the window",
			samples: []sample{
				{bytes: 1000, at: 0, want: 0},
				{bytes: 1000, at: 100 * time.Millisecond, want: 0},
				{bytes: 3048, at: 1100 * time.Millisecond, want: 2048},
			},
		},
		{
			name: "burst of close samples keeps moving the baseline",
			samples: []sample{
				{bytes: 0, at: 0, want: 0},
				{bytes: 500, at: 200 * time.Millisecond, want: 0},
				{bytes: 900, at: 400 * time.Millisecond, want: 0},
				{bytes: 1300, at: 700 * time.Millisecond, want: 400 / 0.3},
			},
		},
		{
			name: "counter reset yields zero then recovers",
			samples: []sample{
				{bytes: 5000, at: 0, want: 0},
				{bytes: 100, at: time.Second, want: 0},
				{bytes: 1100, at: 2 * time.Second, want: 1000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewRateEngine()
			for i, s := range tt.samples {
				got := e.ComputeRate("k", s.bytes, t0.Add(s.at))
				assert.InDelta(t, s.want, got, 0.1, "sample %d", i)
			}
		})
	}
}

func TestRateEngine_KeysAreIndependent(t *testing.T) {
	t0 := time.Now()
	e := NewRateEngine()

	e.ComputeRate(PIDKey(1), 100, t0)
	e.ComputeRate(PIDKey(2), 1000, t0)

	assert.InDelta(t, 100, e.ComputeRate(PIDKey(1), 200, t0.Add(time.Second)), 0.001)
	assert.InDelta(t, 0, e.ComputeRate(PIDKey(2), 1000, t0.Add(time.Second)), 0.001)
	assert.Equal(t, 2, e.Len())
}

func TestRateEngine_Sweep(t *testing.T) {
	t0 := time.Now()
	e := NewRateEngine()
	e.ComputeRate(PIDKey(1), 1, t0)
	e.ComputeRate(PIDKey(2), 1, t0)
	e.ComputeRate(SystemInKey, 1, t0)

	live := map[string]struct{}{PIDKey(1): {}, SystemInKey: {}}

	e.Sweep(live)
	assert.True(t, e.Seen(PIDKey(2)), "one missed cycle is tolerated")

	e.Sweep(live)
	assert.False(t, e.Seen(PIDKey(2)))
	assert.True(t, e.Seen(PIDKey(1)))
	assert.True(t, e.Seen(SystemInKey))
	assert.Equal(t, 2, e.Len())
}

func TestRateEngine_SweepResetsOnReturn(t *testing.T) {
	t0 := time.Now()
	e := NewRateEngine()
	e.ComputeRate(PIDKey(7), 1, t0)

	e.Sweep(map[string]struct{}{})
	e.Sweep(map[string]struct{}{PIDKey(7): {}})
	e.Sweep(map[string]struct{}{})

	assert.True(t, e.Seen(PIDKey(7)))
}

func TestPIDKey(t *testing.T) {
	assert.Equal(t, "pid.42", PIDKey(42))
}
