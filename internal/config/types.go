package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .procmon.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Collector CollectorConfig `yaml:"collector" mapstructure:"collector"`
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	UI        UIConfig        `yaml:"ui" mapstructure:"ui"`
}

// CollectorConfig controls sampling cadence and budgets.
type CollectorConfig struct {
	// Intervals is how often each source samples.
	Intervals IntervalConfig `yaml:"intervals" mapstructure:"intervals"`

	// TTL bounds how often expensive system-wide calls are repeated.
	TTL TTLConfig `yaml:"ttl" mapstructure:"ttl"`

	// MergeInterval is how often the coordinator publishes a snapshot.
	MergeInterval time.Duration `yaml:"merge_interval" mapstructure:"merge_interval"`

	// CycleBudget is the wall-clock limit for one collection by a source.
	CycleBudget time.Duration `yaml:"cycle_budget" mapstructure:"cycle_budget"`

	// StaleAfter is how old a source payload may get before the merger
	// stops overlaying it.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`

	// MaxProcesses caps rows materialized per cycle.
	MaxProcesses int `yaml:"max_processes" mapstructure:"max_processes"`

	// MaxFailures is how many consecutive failed cycles trigger backoff.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`

	// Backoff is the first throttle delay; it doubles up to MaxBackoff.
	Backoff    time.Duration `yaml:"backoff" mapstructure:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// IntervalConfig holds per-source sampling intervals.
type IntervalConfig struct {
	Process time.Duration `yaml:"process" mapstructure:"process"`
	CPU     time.Duration `yaml:"cpu" mapstructure:"cpu"`
	Memory  time.Duration `yaml:"memory" mapstructure:"memory"`
	GPU     time.Duration `yaml:"gpu" mapstructure:"gpu"`
	Network time.Duration `yaml:"network" mapstructure:"network"`
}

// TTLConfig holds cache lifetimes for system-wide readings.
type TTLConfig struct {
	CPU     time.Duration `yaml:"cpu" mapstructure:"cpu"`
	Memory  time.Duration `yaml:"memory" mapstructure:"memory"`
	GPU     time.Duration `yaml:"gpu" mapstructure:"gpu"`
	Network time.Duration `yaml:"network" mapstructure:"network"`
}

// GatewayConfig limits external command execution.
type GatewayConfig struct {
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
	MaxOutputBytes int           `yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
}

// ClassifyConfig controls System/User classification.
type ClassifyConfig struct {
	// SystemNames are substrings that mark a process as System.
	SystemNames []string `yaml:"system_names" mapstructure:"system_names"`

	// InteractiveNames are substrings that keep a root-owned process
	// classified as User (a root shell the user started, for example).
	InteractiveNames []string `yaml:"interactive_names" mapstructure:"interactive_names"`
}

// UIConfig controls the live table.
type UIConfig struct {
	// Refresh is how often the table pulls the latest snapshot.
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`

	// DefaultSort is the initial sort column: pid, name, cpu, mem, gpu, net, time, type.
	DefaultSort string `yaml:"default_sort" mapstructure:"default_sort"`

	// Thresholds for coloring CPU and memory cells.
	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdConfig defines warning and critical levels for metrics.
type ThresholdConfig struct {
	CPU ThresholdValues `yaml:"cpu" mapstructure:"cpu"`
	RAM ThresholdValues `yaml:"ram" mapstructure:"ram"`
}

// ThresholdValues defines warning and critical percentage thresholds.
type ThresholdValues struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// DefaultSystemNames are well-known macOS system daemons plus common
// Linux ones.
var DefaultSystemNames = []string{
	"kernel_task", "launchd", "SystemUIServer", "Dock", "Finder",
	"WindowServer", "loginwindow", "cfprefsd", "systemstats",
	"syslogd", "kextd", "fseventsd", "distnoted", "notifyd",
	"UserEventAgent", "coreservicesd", "lsd", "securityd",
	"sandboxd", "mds", "mdworker", "spotlight", "mdfind",
	"coreaudiod", "audiomxd", "bluetoothd", "wifid",
	"networkd", "dhcpcd", "ntpd", "chronod", "timed",
	"powerd", "thermald", "kernel", "hibernate",
	"AppleSpell", "spindump", "ReportCrash", "CrashReporter",
	"activitymonitord", "SubmitDiagInfo", "DiagnosticReporting",
	"systemd", "kthreadd", "ksoftirqd", "kworker", "rcu_", "migration",
	"journald", "udevd", "dbus-daemon",
}

// DefaultInteractiveNames keep root-owned interactive sessions as User.
var DefaultInteractiveNames = []string{"sudo", "Terminal", "iTerm"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Collector: CollectorConfig{
			Intervals: IntervalConfig{
				Process: 1500 * time.Millisecond,
				CPU:     time.Second,
				Memory:  2 * time.Second,
				GPU:     2 * time.Second,
				Network: time.Second,
			},
			TTL: TTLConfig{
				CPU:     time.Second,
				Memory:  2 * time.Second,
				GPU:     2 * time.Second,
				Network: time.Second,
			},
			MergeInterval: time.Second,
			CycleBudget:   5 * time.Second,
			StaleAfter:    10 * time.Second,
			MaxProcesses:  2000,
			MaxFailures:   5,
			Backoff:       time.Second,
			MaxBackoff:    8 * time.Second,
		},
		Gateway: GatewayConfig{
			CommandTimeout: 5 * time.Second,
			MaxOutputBytes: 1 << 20,
		},
		Classify: ClassifyConfig{
			SystemNames:      append([]string(nil), DefaultSystemNames...),
			InteractiveNames: append([]string(nil), DefaultInteractiveNames...),
		},
		UI: UIConfig{
			Refresh:     250 * time.Millisecond,
			DefaultSort: "cpu",
			Thresholds: ThresholdConfig{
				CPU: ThresholdValues{Warning: 50, Critical: 80},
				RAM: ThresholdValues{Warning: 70, Critical: 90},
			},
		},
	}
}
