package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/procmon/internal/config"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/ui"
	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect and edit the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write the default configuration with a comment on each section.

Without --config the file goes to $XDG_CONFIG_HOME/procmon/config.yaml
(~/.config/procmon/config.yaml when XDG_CONFIG_HOME is unset).

Examples:
  procmon config init
  procmon config init --config ./.procmon.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd.OutOrStdout(), cfgFile, configInitForce)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration procmon would run with: defaults, then the config
file, then PROCMON_* environment variables (including ones from ./.env).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), cfgFile)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one value in the config file",
	Long: `Change one dotted key in the config file, keeping its comments.

Examples:
  procmon config set ui.refresh 500ms
  procmon config set ui.default_sort mem
  procmon config set classify.system_names launchd,kernel_task,systemd`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), cfgFile, args[0], args[1])
	},
}

func configInitCommand(w io.Writer, explicit string, force bool) error {
	path := explicit
	if path == "" {
		path = config.DefaultInitPath()
	}
	path = config.ExpandTilde(path)

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	return nil
}

func configShowCommand(w io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render the configuration", "")
	}

	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	fmt.Fprintf(w, "# source: %s\n", source)
	_, err = w.Write(data)
	return err
}

func configSetCommand(w io.Writer, explicit, key, value string) error {
	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to change",
			"Run 'procmon config init' first")
	}

	before, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read "+path, "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys look like ui.refresh or collector.intervals.cpu")
	}

	// Put the old file back if the new value doesn't load.
	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, before, 0644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Couldn't restore "+path+" after a bad value",
				"Fix the file by hand or rerun 'procmon config init --force'")
		}
		return err
	}

	fmt.Fprintf(w, "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value)
	return nil
}
