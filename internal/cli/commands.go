package cli

import (
	"os"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for procmon.

Examples:
  # Bash
  procmon completion bash > /etc/bash_completion.d/procmon

  # Zsh
  procmon completion zsh > "${fpath[1]}/_procmon"

  # Fish
  procmon completion fish > ~/.config/fish/completions/procmon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// watch
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "initial filter expression (e.g. 'cpu:10+ name:node')")

	// snapshot
	snapshotCmd.Flags().StringVarP(&snapshotFlags.Format, "format", "o", FormatTable, "output format: table, yaml, json")
	snapshotCmd.Flags().StringVar(&snapshotFlags.Filter, "filter", "", "only include processes matching this filter")
	snapshotCmd.Flags().StringVar(&snapshotFlags.Sort, "sort", "cpu", "sort column: pid, name, cpu, mem, gpu, net, time, type")
	snapshotCmd.Flags().BoolVar(&snapshotFlags.Asc, "asc", false, "sort ascending")
	snapshotCmd.Flags().IntVarP(&snapshotFlags.Limit, "limit", "n", 0, "print at most this many processes (0 for all)")
	snapshotCmd.Flags().BoolVar(&snapshotFlags.Specs, "specs", false, "include host hardware and OS details")

	// kill
	killCmd.Flags().BoolVarP(&killFlags.Force, "force", "f", false, "allow terminating system processes")
	killCmd.Flags().BoolVarP(&killFlags.Yes, "yes", "y", false, "skip the confirmation prompt")
	killCmd.Flags().StringVarP(&killFlags.Signal, "signal", "s", "", "signal to send instead of TERM (e.g. HUP, INT, KILL, 9)")
	killCmd.Flags().DurationVar(&killFlags.Grace, "grace", 0, "how long to wait before escalating to SIGKILL (default 3s, negative to never escalate)")

	// config
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}
