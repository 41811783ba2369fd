package cli

import (
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/config"
	"github.com/rileyhilliard/procmon/internal/gateway"
	"github.com/rileyhilliard/procmon/internal/logger"
)

// loadConfig resolves, loads and validates the configuration.
func loadConfig(explicit string) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(explicit)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCollector wires the command gateway and collector from cfg.
func newCollector(cfg *config.Config, log logger.Logger) *collector.Collector {
	gw := gateway.New(gateway.Options{
		MaxOutputBytes: cfg.Gateway.MaxOutputBytes,
		Timeout:        cfg.Gateway.CommandTimeout,
		Logger:         log,
	})

	return collector.New(collector.Options{
		Runner:   gw,
		Config:   cfg.Collector,
		Classify: cfg.Classify,
		Logger:   log,
	})
}
