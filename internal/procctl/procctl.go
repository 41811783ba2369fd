// Package procctl terminates processes on behalf of the kill command and
// the live table. System processes are refused unless the caller forces it.
package procctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultGrace is how long Terminate waits after the first signal before
// escalating to SIGKILL.
const DefaultGrace = 3 * time.Second

const pollInterval = 100 * time.Millisecond

// Process is the part of a running process Terminate needs.
// *process.Process from gopsutil satisfies it.
type Process interface {
	SendSignalWithContext(ctx context.Context, sig syscall.Signal) error
	KillWithContext(ctx context.Context) error
	IsRunningWithContext(ctx context.Context) (bool, error)
}

// Finder looks up a live process by PID.
type Finder func(ctx context.Context, pid int) (Process, error)

// FindProcess resolves pid through gopsutil.
func FindProcess(ctx context.Context, pid int) (Process, error) {
	return process.NewProcessWithContext(ctx, int32(pid))
}

// Options controls one termination.
type Options struct {
	// Force allows terminating processes classified as System.
	Force bool
	// Signal is sent first. Defaults to SIGTERM.
	Signal syscall.Signal
	// Grace is how long to wait for the process to exit before SIGKILL.
	// Zero means DefaultGrace; negative disables escalation.
	Grace time.Duration
}

// Result describes what Terminate did.
type Result struct {
	PID       int
	Signal    syscall.Signal
	Escalated bool
}

// Terminator sends signals to processes.
type Terminator struct {
	find Finder
	poll time.Duration
}

// New creates a Terminator. A nil finder uses FindProcess.
func New(find Finder) *Terminator {
	if find == nil {
		find = FindProcess
	}
	return &Terminator{find: find, poll: pollInterval}
}

// Check refuses to touch rec when it is a System process and force is not
// set, or when the PID can never be a valid target.
func Check(rec collector.ProcessRecord, force bool) error {
	if rec.PID <= 1 {
		return errors.New(errors.ErrProcess,
			fmt.Sprintf("Refusing to terminate PID %d", rec.PID),
			"PID 0 and 1 belong to the kernel and init")
	}
	if rec.Class == collector.ClassSystem && !force {
		return errors.New(errors.ErrProcess,
			fmt.Sprintf("%s (PID %d) is a system process", rec.Name, rec.PID),
			"Pass --force if you really want to terminate it")
	}
	return nil
}

// Terminate checks rec, sends the configured signal and, if the process is
// still alive after the grace period, sends SIGKILL.
func (t *Terminator) Terminate(ctx context.Context, rec collector.ProcessRecord, opts Options) (Result, error) {
	res := Result{PID: rec.PID, Signal: opts.Signal}
	if res.Signal == 0 {
		res.Signal = syscall.SIGTERM
	}
	grace := opts.Grace
	if grace == 0 {
		grace = DefaultGrace
	}

	if err := Check(rec, opts.Force); err != nil {
		return res, err
	}

	proc, err := t.find(ctx, rec.PID)
	if err != nil {
		return res, errors.WrapWithCode(err, errors.ErrProcess,
			fmt.Sprintf("No process with PID %d", rec.PID),
			"It may have exited already")
	}

	if err := proc.SendSignalWithContext(ctx, res.Signal); err != nil {
		return res, errors.WrapWithCode(err, errors.ErrProcess,
			fmt.Sprintf("Couldn't send %s to PID %d", SignalName(res.Signal), rec.PID),
			"You may need elevated privileges to signal processes owned by other users")
	}

	if res.Signal == syscall.SIGKILL || grace < 0 {
		return res, nil
	}

	if t.waitExit(ctx, proc, grace) {
		return res, nil
	}

	if err := proc.KillWithContext(ctx); err != nil {
		return res, errors.WrapWithCode(err, errors.ErrProcess,
			fmt.Sprintf("PID %d ignored %s and SIGKILL failed", rec.PID, SignalName(res.Signal)), "")
	}
	res.Escalated = true
	return res, nil
}

// waitExit polls until the process is gone or grace runs out.
func (t *Terminator) waitExit(ctx context.Context, proc Process, grace time.Duration) bool {
	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		running, err := proc.IsRunningWithContext(ctx)
		if err != nil || !running {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

var signalNames = map[string]syscall.Signal{
	"HUP":  syscall.SIGHUP,
	"INT":  syscall.SIGINT,
	"QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL,
	"TERM": syscall.SIGTERM,
}

// ParseSignal accepts TERM, SIGTERM, term or a signal number.
func ParseSignal(s string) (syscall.Signal, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "SIG")
	if sig, ok := signalNames[name]; ok {
		return sig, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 && n < 65 {
		return syscall.Signal(n), nil
	}
	return 0, errors.New(errors.ErrProcess,
		fmt.Sprintf("Unknown signal %q", s),
		"Use one of HUP, INT, QUIT, KILL, TERM or a signal number")
}

// SignalName returns "SIGTERM" style names for the signals ParseSignal knows.
func SignalName(sig syscall.Signal) string {
	for name, s := range signalNames {
		if s == sig {
			return "SIG" + name
		}
	}
	return "signal " + strconv.Itoa(int(sig))
}
