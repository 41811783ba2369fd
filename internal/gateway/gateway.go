// Package gateway runs the fixed set of read-only OS tools procmon samples.
//
// Command lines never reach a shell. They are validated against an
// allow-list, split into pipeline stages, tokenized, and chained
// in-process. Every rejection or execution problem comes back as a
// *Failure, which callers treat as "no data yet".
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/logger"
)

// Runner executes one command line and returns its captured stdout.
type Runner interface {
	Execute(ctx context.Context, commandLine string) ([]byte, error)
}

// DefaultMaxOutputBytes caps captured output per call.
const DefaultMaxOutputBytes = 1 << 20

// DefaultTimeout bounds a single call when the caller's context has no
// earlier deadline.
const DefaultTimeout = 5 * time.Second

// Options configures a Gateway.
type Options struct {
	Policy         Policy
	MaxOutputBytes int
	Timeout        time.Duration
	Logger         logger.Logger
}

// Gateway is the production Runner.
type Gateway struct {
	policy    Policy
	maxOutput int
	timeout   time.Duration
	log       logger.Logger
}

// New creates a Gateway. Zero-valued options fall back to defaults.
func New(opts Options) *Gateway {
	g := &Gateway{
		policy:    opts.Policy,
		maxOutput: opts.MaxOutputBytes,
		timeout:   opts.Timeout,
		log:       opts.Logger,
	}
	if len(g.policy.AllowedCommands) == 0 {
		g.policy = DefaultPolicy()
	}
	if g.maxOutput <= 0 {
		g.maxOutput = DefaultMaxOutputBytes
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.log == nil {
		g.log = logger.NewEnvLogger("[gateway]")
	}
	return g
}

// Execute validates and runs commandLine. It never panics and never
// returns a non-Failure error.
func (g *Gateway) Execute(ctx context.Context, commandLine string) ([]byte, error) {
	stages, err := g.policy.Validate(commandLine)
	if err != nil {
		g.log.Debug("rejected %q: %v", commandLine, err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.run(ctx, cancel, commandLine, stages)
	g.log.Debug("ran %q in %s (%d bytes, err=%v)", commandLine, time.Since(start).Round(time.Millisecond), len(out), err)
	return out, err
}

func (g *Gateway) run(ctx context.Context, cancel context.CancelFunc, commandLine string, stages [][]string) ([]byte, error) {
	cmds := make([]*exec.Cmd, len(stages))
	for i, argv := range stages {
		cmds[i] = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}

	// The parent drops its pipe ends once the stages are running, so a
	// filter that exits early delivers SIGPIPE to its producer.
	var ends []*os.File
	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeFiles(ends)
			return nil, &Failure{Reason: ReasonExec, Command: commandLine, Cause: err}
		}
		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		ends = append(ends, r, w)
	}

	sink := &cappedBuffer{limit: g.maxOutput, onOverflow: cancel}
	cmds[len(cmds)-1].Stdout = sink

	started := 0
	for _, c := range cmds {
		if err := c.Start(); err != nil {
			cancel()
			closeFiles(ends)
			for _, s := range cmds[:started] {
				_ = s.Wait()
			}
			return nil, &Failure{Reason: ReasonExec, Command: commandLine, Cause: err}
		}
		started++
	}
	closeFiles(ends)

	// Pipeline status is the last stage's, so an early-exiting head does
	// not turn the producer's SIGPIPE into a failure.
	var lastErr error
	for i, c := range cmds {
		if err := c.Wait(); err != nil && i == len(cmds)-1 {
			lastErr = err
		}
	}

	switch {
	case sink.overflowed():
		return nil, &Failure{
			Reason:  ReasonOutputLimit,
			Command: commandLine,
			Cause: errors.New(errors.ErrLimit,
				fmt.Sprintf("output exceeded %d bytes", g.maxOutput), ""),
		}
	case ctx.Err() == context.DeadlineExceeded:
		return nil, &Failure{
			Reason:  ReasonTimeout,
			Command: commandLine,
			Cause:   errors.WrapWithCode(ctx.Err(), errors.ErrTimeout, "command timed out", ""),
		}
	case lastErr != nil:
		return nil, &Failure{Reason: ReasonExec, Command: commandLine, Cause: lastErr}
	}

	return sink.Bytes(), nil
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// cappedBuffer collects output up to limit bytes. Writing past the limit
// trips onOverflow, which cancels the running pipeline.
type cappedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	limit      int
	over       bool
	onOverflow func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.over {
		return 0, io.ErrShortWrite
	}
	if b.buf.Len()+len(p) > b.limit {
		b.over = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return 0, io.ErrShortWrite
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.over
}

func (b *cappedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}
