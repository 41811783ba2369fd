package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/logger"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".procmon.yaml"
	// GlobalConfigDir is the directory for global config under XDG_CONFIG_HOME.
	GlobalConfigDir = "procmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override (PROCMON_UI_REFRESH=500ms).
	EnvPrefix = "PROCMON"
	// ConfigPathEnv names an explicit config file.
	ConfigPathEnv = "PROCMON_CONFIG"
	// DotEnvFile is loaded from the working directory before env lookups.
	DotEnvFile = ".env"
)

// Load reads config from the specified path, layering env overrides on top.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'procmon config init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. $PROCMON_CONFIG
// 3. .procmon.yaml in current directory
// 4. $XDG_CONFIG_HOME/procmon/config.yaml (~/.config when unset)
// 5. ~/.procmon.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(ConfigPathEnv)
	}
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	for _, candidate := range searchPaths(cwd) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// searchPaths lists the implicit config locations in priority order.
func searchPaths(cwd string) []string {
	paths := []string{filepath.Join(cwd, ConfigFileName)}

	home, _ := os.UserHomeDir()
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, GlobalConfigDir, GlobalConfigFile))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, ConfigFileName))
	}
	return paths
}

// LoadOrDefault resolves the config path and loads it. With no config file
// anywhere it returns defaults with env overrides applied. The returned path
// is empty when no file was used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	if err := LoadDotEnv(""); err != nil {
		logger.Default().Debug("ignoring %s: %v", DotEnvFile, err)
	}

	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	var cfg *Config
	if path == "" {
		cfg, err = parseConfig(newViper(), "environment")
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadDotEnv loads a .env file from dir (the working directory when empty).
// Variables already set in the environment win. A missing file is not an
// error; an unreadable or malformed one is.
func LoadDotEnv(dir string) error {
	path := DotEnvFile
	if dir != "" {
		path = filepath.Join(dir, DotEnvFile)
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't load %s", path),
			"Check the file for lines that aren't KEY=value")
	}
	return nil
}

// newViper builds a viper instance with defaults and PROCMON_* env binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("collector.intervals.process", d.Collector.Intervals.Process)
	v.SetDefault("collector.intervals.cpu", d.Collector.Intervals.CPU)
	v.SetDefault("collector.intervals.memory", d.Collector.Intervals.Memory)
	v.SetDefault("collector.intervals.gpu", d.Collector.Intervals.GPU)
	v.SetDefault("collector.intervals.network", d.Collector.Intervals.Network)
	v.SetDefault("collector.ttl.cpu", d.Collector.TTL.CPU)
	v.SetDefault("collector.ttl.memory", d.Collector.TTL.Memory)
	v.SetDefault("collector.ttl.gpu", d.Collector.TTL.GPU)
	v.SetDefault("collector.ttl.network", d.Collector.TTL.Network)
	v.SetDefault("collector.merge_interval", d.Collector.MergeInterval)
	v.SetDefault("collector.cycle_budget", d.Collector.CycleBudget)
	v.SetDefault("collector.stale_after", d.Collector.StaleAfter)
	v.SetDefault("collector.max_processes", d.Collector.MaxProcesses)
	v.SetDefault("collector.max_failures", d.Collector.MaxFailures)
	v.SetDefault("collector.backoff", d.Collector.Backoff)
	v.SetDefault("collector.max_backoff", d.Collector.MaxBackoff)

	v.SetDefault("gateway.command_timeout", d.Gateway.CommandTimeout)
	v.SetDefault("gateway.max_output_bytes", d.Gateway.MaxOutputBytes)

	v.SetDefault("classify.system_names", d.Classify.SystemNames)
	v.SetDefault("classify.interactive_names", d.Classify.InteractiveNames)

	v.SetDefault("ui.refresh", d.UI.Refresh)
	v.SetDefault("ui.default_sort", d.UI.DefaultSort)
	v.SetDefault("ui.thresholds.cpu.warning", d.UI.Thresholds.CPU.Warning)
	v.SetDefault("ui.thresholds.cpu.critical", d.UI.Thresholds.CPU.Critical)
	v.SetDefault("ui.thresholds.ram.warning", d.UI.Thresholds.RAM.Warning)
	v.SetDefault("ui.thresholds.ram.critical", d.UI.Thresholds.RAM.Critical)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax and duration values in "+source)
	}

	return cfg, nil
}
