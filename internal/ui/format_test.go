package ui

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{150 * 1024 * 1024, "150 MiB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "-", FormatRate(0))
	assert.Equal(t, "-", FormatRate(-3))
	assert.Equal(t, "-", FormatRate(math.NaN()))
	assert.Equal(t, "2.0 KiB/s", FormatRate(2048))
	assert.Equal(t, "1.5 KiB/s", FormatRate(1548))
}

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00:00"},
		{-1, "00:00"},
		{65, "01:05"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{90061, "1d 01:01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRuntime(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "chrome", Truncate("chrome", 10))
	assert.Equal(t, "Google Ch…", Truncate("Google Chrome Helper", 10))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本…", Truncate("日本語テキスト", 3))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.3", FormatPercent(12.34))
	assert.Equal(t, "0.0", FormatPercent(0))
}
