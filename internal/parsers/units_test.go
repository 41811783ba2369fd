package parsers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMemoryString(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"512M", 536870912},
		{"2G", 2147483648},
		{"1024K", 1048576},
		{"2.5G", 2684354560},
		{"1T", 1099511627776},
		{"512m", 536870912},
		{"100MB", 104857600},
		{"100MiB", 104857600},
		{"1kb", 1024},
		{"4096", 4096},
		{"512B", 512},
		{"12M+", 12582912},
		{"3K-", 3072},
		{"  64M  ", 67108864},
		{"", 0},
		{"M", 0},
		{"B", 0},
		{"abc", 0},
		{"1.2.3M", 0},
		{"NaN", 0},
		{"NaNM", 0},
		{"InfG", 0},
		{"99999999999T", math.MaxInt64},
		{"9223372036854775807", math.MaxInt64},
		{"8P", 9007199254740992},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMemoryString(tt.input))
		})
	}
}

func TestParseRuntime(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"01:23:45", 5025},
		{"1-02:30:15", 95415},
		{"5:30", 330},
		{"00:00", 0},
		{"10-00:00:00", 864000},
		{"12:34.56", 754},
		{"1:02:03.99", 3723},
		{"", 0},
		{"45", 0},
		{"a:b", 0},
		{"1:2:3:4", 0},
		{"1-02:30", 0},
		{"-1:00", 0},
		{"x-01:00:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRuntime(tt.input))
		})
	}
}
