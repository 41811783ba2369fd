package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/logger"
	"github.com/rileyhilliard/procmon/internal/procctl"
	"github.com/rileyhilliard/procmon/internal/ui"
	"github.com/spf13/cobra"
)

type killOptions struct {
	Force  bool
	Yes    bool
	Signal string
	Grace  time.Duration
}

var killFlags killOptions

var killCmd = &cobra.Command{
	Use:   "kill PID",
	Short: "Terminate a process",
	Long: `Send SIGTERM to a process and escalate to SIGKILL if it is still running
after the grace period.

System processes (kernel, launchd, systemd, root daemons) are refused unless
--force is given. PID 0 and 1 are always refused.

Examples:
  procmon kill 4242
  procmon kill 4242 --yes --grace 10s
  procmon kill 4242 --signal HUP
  procmon kill 311 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		coll := newCollector(cfg, logger.Default())

		opts := killFlags
		confirm := confirmKill
		if opts.Yes {
			confirm = func(collector.ProcessRecord, procctl.Options) (bool, error) { return true, nil }
		} else if !isTerminal(os.Stdin) {
			return errors.New(errors.ErrProcess,
				"Refusing to terminate without confirmation",
				"Pass --yes when running without a terminal")
		}

		return killCommand(cmd.Context(), cmd.OutOrStdout(), killDeps{
			lookup:    snapshotLookup(coll),
			terminate: procctl.New(nil),
			confirm:   confirm,
			animate:   isTerminal(os.Stderr),
		}, pid, opts)
	},
}

// killDeps are the pieces of kill that touch the system.
type killDeps struct {
	lookup    func(ctx context.Context, pid int) (collector.ProcessRecord, bool, error)
	terminate processKiller
	confirm   func(rec collector.ProcessRecord, opts procctl.Options) (bool, error)
	// status receives progress lines; stderr when nil.
	status  io.Writer
	animate bool
}

type processKiller interface {
	Terminate(ctx context.Context, rec collector.ProcessRecord, opts procctl.Options) (procctl.Result, error)
}

func killCommand(ctx context.Context, w io.Writer, deps killDeps, pid int, flags killOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := procctl.Options{Force: flags.Force, Grace: flags.Grace}
	if flags.Signal != "" {
		sig, err := procctl.ParseSignal(flags.Signal)
		if err != nil {
			return err
		}
		opts.Signal = sig
	}

	rec, found, err := deps.lookup(ctx, pid)
	if err != nil {
		return err
	}
	if !found {
		return errors.New(errors.ErrProcess,
			fmt.Sprintf("No process with PID %d", pid),
			"Run 'procmon snapshot' to list running processes")
	}

	// Refuse before asking, so the prompt never offers something that will fail.
	if err := procctl.Check(rec, opts.Force); err != nil {
		return err
	}

	ok, err := deps.confirm(rec, opts)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "Left %s (PID %d) running\n", rec.Name, rec.PID)
		return nil
	}

	status := deps.status
	if status == nil {
		status = os.Stderr
	}
	sigName := procctl.SignalName(signalOrDefault(opts.Signal))
	spin := ui.NewSpinner(status, fmt.Sprintf("Sending %s to %s (PID %d)", sigName, rec.Name, rec.PID), deps.animate)
	spin.Start()

	res, err := deps.terminate.Terminate(ctx, rec, opts)
	if err != nil {
		spin.Fail(errors.Headline(err))
		return err
	}

	if res.Escalated {
		spin.Success(fmt.Sprintf("Killed %s (PID %d) after it ignored %s", rec.Name, rec.PID, procctl.SignalName(res.Signal)))
	} else {
		spin.Success(fmt.Sprintf("Sent %s to %s (PID %d)", procctl.SignalName(res.Signal), rec.Name, rec.PID))
	}
	return nil
}

func signalOrDefault(sig syscall.Signal) syscall.Signal {
	if sig == 0 {
		return syscall.SIGTERM
	}
	return sig
}

// snapshotLookup classifies pid from one full collection, so kill applies
// the same System rules the dashboard shows.
func snapshotLookup(src snapshotSource) func(ctx context.Context, pid int) (collector.ProcessRecord, bool, error) {
	return func(ctx context.Context, pid int) (collector.ProcessRecord, bool, error) {
		ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		defer cancel()

		snap, err := src.CollectOnce(ctx)
		if err != nil {
			return collector.ProcessRecord{}, false, err
		}
		rec, ok := snap.Processes[pid]
		return rec, ok, nil
	}
}

// confirmKill asks on the terminal before sending anything.
func confirmKill(rec collector.ProcessRecord, opts procctl.Options) (bool, error) {
	desc := fmt.Sprintf("Sends %s", procctl.SignalName(signalOrDefault(opts.Signal)))
	if opts.Signal == 0 || opts.Signal == syscall.SIGTERM {
		desc += ", then SIGKILL if it is still running"
	}
	if rec.Class == collector.ClassSystem {
		desc = "This is a system process. " + desc
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Terminate %s (PID %d)?", rec.Name, rec.PID)).
				Description(desc).
				Affirmative("Terminate").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrProcess,
			"Couldn't show the confirmation prompt",
			"Pass --yes to skip it")
	}
	return confirmed, nil
}

func parsePID(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil || pid < 0 {
		return 0, errors.New(errors.ErrProcess,
			fmt.Sprintf("%q is not a process ID", arg),
			"Pass the numeric PID shown in the PID column")
	}
	return pid, nil
}
