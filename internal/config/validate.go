package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/procmon/internal/errors"
)

// SortColumns are the accepted values for ui.default_sort.
var SortColumns = []string{"pid", "name", "cpu", "mem", "gpu", "net", "time", "type"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but procmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest procmon release.")
	}

	if err := validateCollector(cfg.Collector); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'collector' section in your .procmon.yaml.")
	}

	if err := validateGateway(cfg.Gateway); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'gateway' section in your .procmon.yaml.")
	}

	if err := validateUI(cfg.UI); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'ui' section in your .procmon.yaml.")
	}

	return nil
}

func validateCollector(c CollectorConfig) error {
	durations := []struct {
		key string
		d   time.Duration
	}{
		{"collector.intervals.process", c.Intervals.Process},
		{"collector.intervals.cpu", c.Intervals.CPU},
		{"collector.intervals.memory", c.Intervals.Memory},
		{"collector.intervals.gpu", c.Intervals.GPU},
		{"collector.intervals.network", c.Intervals.Network},
		{"collector.ttl.cpu", c.TTL.CPU},
		{"collector.ttl.memory", c.TTL.Memory},
		{"collector.ttl.gpu", c.TTL.GPU},
		{"collector.ttl.network", c.TTL.Network},
		{"collector.merge_interval", c.MergeInterval},
		{"collector.cycle_budget", c.CycleBudget},
		{"collector.stale_after", c.StaleAfter},
		{"collector.backoff", c.Backoff},
		{"collector.max_backoff", c.MaxBackoff},
	}
	for _, d := range durations {
		if err := validatePositiveDuration(d.key, d.d); err != nil {
			return err
		}
	}

	if c.MaxProcesses <= 0 {
		return fmt.Errorf("collector.max_processes needs to be at least 1 (got %d)", c.MaxProcesses)
	}
	if c.MaxFailures <= 0 {
		return fmt.Errorf("collector.max_failures needs to be at least 1 (got %d)", c.MaxFailures)
	}
	if c.Backoff > c.MaxBackoff {
		return fmt.Errorf("collector.backoff (%s) is longer than collector.max_backoff (%s) - should be the other way around", c.Backoff, c.MaxBackoff)
	}
	return nil
}

func validateGateway(g GatewayConfig) error {
	if err := validatePositiveDuration("gateway.command_timeout", g.CommandTimeout); err != nil {
		return err
	}
	if g.MaxOutputBytes <= 0 {
		return fmt.Errorf("gateway.max_output_bytes needs to be positive (got %d)", g.MaxOutputBytes)
	}
	return nil
}

func validateUI(u UIConfig) error {
	if err := validatePositiveDuration("ui.refresh", u.Refresh); err != nil {
		return err
	}

	if u.DefaultSort != "" && !isSortColumn(u.DefaultSort) {
		return fmt.Errorf("ui.default_sort '%s' isn't a column - use one of: %s", u.DefaultSort, strings.Join(SortColumns, ", "))
	}

	if err := validateThresholds("cpu", u.Thresholds.CPU); err != nil {
		return err
	}
	return validateThresholds("ram", u.Thresholds.RAM)
}

func validatePositiveDuration(key string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s needs to be a positive duration like '1s' (got %s)", key, d)
	}
	return nil
}

func isSortColumn(name string) bool {
	for _, c := range SortColumns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// validateThresholds checks a threshold configuration for a single metric type.
func validateThresholds(name string, thresh ThresholdValues) error {
	if thresh.Warning < 0 || thresh.Warning > 100 {
		return fmt.Errorf("ui.thresholds.%s.warning needs to be 0-100 (got %d)", name, thresh.Warning)
	}
	if thresh.Critical < 0 || thresh.Critical > 100 {
		return fmt.Errorf("ui.thresholds.%s.critical needs to be 0-100 (got %d)", name, thresh.Critical)
	}
	if thresh.Warning > 0 && thresh.Critical > 0 && thresh.Warning >= thresh.Critical {
		return fmt.Errorf("ui.thresholds.%s.warning (%d%%) is higher than critical (%d%%) - should be the other way around", name, thresh.Warning, thresh.Critical)
	}
	return nil
}
