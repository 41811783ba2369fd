package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_RoundTrips(t *testing.T) {
	isolate(t)
	data, err := Template()
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# How often each source samples")
	assert.Contains(t, text, "process: 1.5s")
	assert.Contains(t, text, "refresh: 250ms")

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))
	assert.FileExists(t, path)

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))
	require.NoError(t, WriteDefault(path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_processes: 2000")
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name         string
		initialYAML  string
		key          string
		value        string
		wantContains []string
		wantErr      bool
	}{
		{
			name: "replace existing scalar",
			initialYAML: `version: 1
ui:
  refresh: 250ms # fast
`,
			key:          "ui.refresh",
			value:        "1s",
			wantContains: []string{"refresh: 1s # fast"},
		},
		{
			name:         "create missing sections",
			initialYAML:  "version: 1\n",
			key:          "collector.intervals.gpu",
			value:        "5s",
			wantContains: []string{"collector:", "  intervals:", "    gpu: 5s"},
		},
		{
			name: "list values split on commas",
			initialYAML: `classify:
  interactive_names:
    - sudo
`,
			key:          "classify.interactive_names",
			value:        "sudo, tmux,",
			wantContains: []string{"- sudo", "- tmux"},
		},
		{
			name:         "empty file",
			initialYAML:  "",
			key:          "ui.default_sort",
			value:        "mem",
			wantContains: []string{"ui:", "default_sort: mem"},
		},
		{
			name:        "scalar in the way",
			initialYAML: "ui: fast\n",
			key:         "ui.refresh",
			value:       "1s",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.initialYAML), 0644))

			err := SetValue(path, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestSetValue_LoadsBack(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteDefault(path, false))

	require.NoError(t, SetValue(path, "collector.max_processes", "300"))
	require.NoError(t, SetValue(path, "ui.refresh", "750ms"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Collector.MaxProcesses)
	assert.Equal(t, 750*time.Millisecond, cfg.UI.Refresh)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "# Rows kept per cycle"), "comments survive edits")
}

func TestSetValue_MissingFile(t *testing.T) {
	err := SetValue(filepath.Join(t.TempDir(), "missing.yaml"), "ui.refresh", "1s")
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.DefaultSort = "name"

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_sort: name")
	assert.NotContains(t, string(data), "#")
}
