// Package cli implements the procmon command-line interface.
//
// Commands are Cobra commands registered on rootCmd. Each one loads the
// configuration, builds what it needs from the internal packages and hands
// off:
//
//	procmon [watch]       - live dashboard (collector + monitor TUI)
//	procmon snapshot      - collect once, print table/yaml/json
//	procmon kill PID      - classify, confirm, SIGTERM then SIGKILL
//	procmon config init|show|set
//	procmon version
//
// Global flags (--config, --log-file, --no-color) live on the root command.
// With --format json errors are written to stdout as a JSON envelope so
// scripts never have to parse the human-readable form.
package cli
