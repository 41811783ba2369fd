package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile     string
	logFile     string
	noColor     bool
	watchFilter string
)

var rootCmd = &cobra.Command{
	Use:   "procmon",
	Short: "Live process monitor with filtering and process control",
	Long: `procmon samples the processes running on this machine and shows them in a
live, sortable, filterable table.

Run without a subcommand to open the dashboard. Use 'procmon snapshot' for
a one-shot table or YAML/JSON dump that works in scripts and pipes.

Examples:
  procmon
  procmon --filter 'cpu:10+ type:user'
  procmon snapshot --format json
  procmon kill 4242`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(watchOptions{
			ConfigPath: cfgFile,
			LogFile:    logFile,
			Filter:     watchFilter,
		})
	},
}

// Execute runs the root command and exits with a non-zero status on error.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if MachineMode() {
		_ = WriteJSONFromError(os.Stdout, err)
		os.Exit(1)
	}

	if isUnknownCommandError(err) {
		fmt.Fprintln(os.Stderr, errors.New(errors.ErrConfig,
			err.Error(),
			unknownCommandSuggestion(extractUnknownCommand(err))))
		os.Exit(1)
	}

	var pmErr *errors.Error
	if stderrors.As(err, &pmErr) {
		fmt.Fprintln(os.Stderr, pmErr)
	} else {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
	}
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line
// itself rather than a command failing.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "procmon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

func unknownCommandSuggestion(name string) string {
	// A PID typed without the kill subcommand is the common slip.
	if name != "" && strings.Trim(name, "0123456789") == "" {
		return fmt.Sprintf("To terminate a process, run 'procmon kill %s'", name)
	}
	return "Run 'procmon --help' to see the available commands"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.procmon.yaml, then ~/.config/procmon/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs here while the dashboard is open")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().StringVar(&watchFilter, "filter", "", "initial filter expression (e.g. 'cpu:10+ name:node')")
}
