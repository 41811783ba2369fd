package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: true,
			errMsg:  "from the future",
		},
		{
			name:    "zero process interval",
			mutate:  func(c *Config) { c.Collector.Intervals.Process = 0 },
			wantErr: true,
			errMsg:  "collector.intervals.process",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Collector.TTL.GPU = -time.Second },
			wantErr: true,
			errMsg:  "collector.ttl.gpu",
		},
		{
			name:    "zero cycle budget",
			mutate:  func(c *Config) { c.Collector.CycleBudget = 0 },
			wantErr: true,
			errMsg:  "collector.cycle_budget",
		},
		{
			name:    "zero process cap",
			mutate:  func(c *Config) { c.Collector.MaxProcesses = 0 },
			wantErr: true,
			errMsg:  "collector.max_processes",
		},
		{
			name:    "zero failure threshold",
			mutate:  func(c *Config) { c.Collector.MaxFailures = 0 },
			wantErr: true,
			errMsg:  "collector.max_failures",
		},
		{
			name: "backoff longer than max",
			mutate: func(c *Config) {
				c.Collector.Backoff = 10 * time.Second
				c.Collector.MaxBackoff = 5 * time.Second
			},
			wantErr: true,
			errMsg:  "collector.backoff",
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Gateway.CommandTimeout = 0 },
			wantErr: true,
			errMsg:  "gateway.command_timeout",
		},
		{
			name:    "zero output cap",
			mutate:  func(c *Config) { c.Gateway.MaxOutputBytes = 0 },
			wantErr: true,
			errMsg:  "gateway.max_output_bytes",
		},
		{
			name:    "zero refresh",
			mutate:  func(c *Config) { c.UI.Refresh = 0 },
			wantErr: true,
			errMsg:  "ui.refresh",
		},
		{
			name:    "unknown sort column",
			mutate:  func(c *Config) { c.UI.DefaultSort = "color" },
			wantErr: true,
			errMsg:  "isn't a column",
		},
		{
			name:   "sort column is case insensitive",
			mutate: func(c *Config) { c.UI.DefaultSort = "MEM" },
		},
		{
			name:   "empty sort column uses default",
			mutate: func(c *Config) { c.UI.DefaultSort = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateThresholds(t *testing.T) {
	tests := []struct {
		name    string
		thresh  ThresholdValues
		wantErr bool
		errMsg  string
	}{
		{name: "valid", thresh: ThresholdValues{Warning: 70, Critical: 90}},
		{name: "zeros use defaults", thresh: ThresholdValues{}},
		{name: "warning above 100", thresh: ThresholdValues{Warning: 101, Critical: 90}, wantErr: true, errMsg: "0-100"},
		{name: "negative critical", thresh: ThresholdValues{Warning: 10, Critical: -1}, wantErr: true, errMsg: "0-100"},
		{name: "inverted", thresh: ThresholdValues{Warning: 90, Critical: 70}, wantErr: true, errMsg: "other way around"},
		{name: "equal", thresh: ThresholdValues{Warning: 80, Critical: 80}, wantErr: true, errMsg: "other way around"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateThresholds("cpu", tt.thresh)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
