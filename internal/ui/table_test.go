package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 20},
		{Title: "Status", Width: 10},
	}
	rows := []table.Row{
		{"item1", "ok"},
		{"item2", "error"},
	}

	view := NewTable(columns, rows).View()
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "Status")
	assert.Contains(t, view, "item1")
	assert.Contains(t, view, "item2")
}

func TestRenderSimpleTable_EmptyRows(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Name", Width: 20}}, nil))
}

func TestProcessColumns(t *testing.T) {
	cols := ProcessColumns(140)
	require.Len(t, cols, 8)
	assert.Equal(t, "NAME", cols[1].Title)

	total := 0
	for _, c := range cols {
		total += c.Width + 2
	}
	assert.Equal(t, 140, total)

	narrow := ProcessColumns(40)
	assert.Equal(t, 16, narrow[1].Width)
}

func TestProcessRows(t *testing.T) {
	rows := ProcessRows([]collector.ProcessRecord{
		{
			PID:            4242,
			Name:           "node",
			CPU:            35,
			MemoryBytes:    300 << 20,
			GPU:            "~7%",
			NetRate:        2048,
			RuntimeSeconds: 90,
			Class:          collector.ClassUser,
		},
		{PID: 1, Name: "launchd", GPU: collector.GPUUnavailable, Class: collector.ClassSystem},
	})

	assert.Equal(t, [][]string{
		{"4242", "node", "35.0", "300 MiB", "~7%", "2.0 KiB/s", "01:30", "User"},
		{"1", "launchd", "0.0", "0 B", "N/A", "-", "00:00", "System"},
	}, rows)
}

func TestRenderProcessTable(t *testing.T) {
	out := RenderProcessTable([]collector.ProcessRecord{
		{PID: 4242, Name: "node", CPU: 35, GPU: "N/A"},
	}, 120)
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "node")
	assert.Contains(t, out, "4242")

	assert.Contains(t, RenderProcessTable(nil, 120), "No processes")
}

func TestSpecRows(t *testing.T) {
	rows := SpecRows(collector.HostSpecs{
		Hostname:    "box",
		Cores:       8,
		MemoryBytes: 16 << 30,
		Uptime:      26 * time.Hour,
	})

	assert.Equal(t, [][2]string{
		{"Host", "box"},
		{"Cores", "8"},
		{"Memory", "16 GiB"},
		{"Uptime", "1d 02:00"},
	}, rows)

	assert.Empty(t, SpecRows(collector.HostSpecs{}))
}

func TestRenderKeyValues(t *testing.T) {
	out := RenderKeyValues([][2]string{
		{"Host", "box"},
		{"Processor", "Apple M2"},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Host       box", lines[0])
	assert.Equal(t, "Processor  Apple M2", lines[1])
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}
