package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/logger"
	"github.com/rileyhilliard/procmon/internal/monitor"
	"github.com/rileyhilliard/procmon/internal/procctl"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type watchOptions struct {
	ConfigPath string
	LogFile    string
	Filter     string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live process dashboard (default)",
	Long: `Open the live process dashboard. This is what plain 'procmon' runs.

Keys: s/1-8 sort, / filter, f filter help, x kill, i host specs, ? help, q quit.

Examples:
  procmon watch
  procmon watch --filter 'mem:1GB+'
  procmon watch --log-file /tmp/procmon.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(watchOptions{
			ConfigPath: cfgFile,
			LogFile:    logFile,
			Filter:     watchFilter,
		})
	},
}

// watchCommand runs the collector in the background and the dashboard in
// the foreground until the user quits.
func watchCommand(opts watchOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'procmon snapshot' for output that can be piped or redirected")
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Anything written to stderr would tear the alt screen, so logs go to
	// --log-file or nowhere while the dashboard is up.
	log, closeLog, err := dashboardLogger(opts.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	prev := logger.Default()
	logger.SetDefault(log)
	defer logger.SetDefault(prev)

	coll := newCollector(cfg, log)

	model, err := monitor.NewModel(monitor.Options{
		Source: coll,
		Killer: procctl.New(nil),
		UI:     cfg.UI,
		Filter: opts.Filter,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		coll.Run(ctx)
	}()

	log.Info("dashboard started on %s", coll.Platform())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()

	cancel()
	<-done
	log.Info("dashboard stopped")

	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"The dashboard exited unexpectedly",
			"Run with --log-file to capture what happened")
	}
	return nil
}

// dashboardLogger opens path for appending, or returns a no-op logger when
// path is empty.
func dashboardLogger(path string) (logger.Logger, func(), error) {
	if path == "" {
		return logger.Noop(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't open log file %s", path),
			"Check the directory exists and is writable")
	}

	debug := os.Getenv(logger.DebugEnv) != ""
	return logger.NewWriterLogger(f, "[procmon]", debug), func() { _ = f.Close() }, nil
}
