// Package testing provides test doubles for the gateway package.
package testing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/procmon/internal/gateway"
)

// CommandResponse defines a canned response for a command line.
type CommandResponse struct {
	Output []byte
	Error  error
	Delay  time.Duration
}

type prefixResponse struct {
	prefix string
	resp   CommandResponse
}

// FakeRunner is a scripted gateway.Runner.
// Exact matches win over prefix matches; prefixes are tried in the order
// they were registered. Unknown commands fail with a gateway exec Failure.
type FakeRunner struct {
	mu       sync.Mutex
	exact    map[string]CommandResponse
	prefixes []prefixResponse
	calls    []string
}

// NewFakeRunner creates a runner with no scripted responses.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{exact: make(map[string]CommandResponse)}
}

// On scripts output for an exact command line.
func (f *FakeRunner) On(commandLine, output string) *FakeRunner {
	return f.OnResponse(commandLine, CommandResponse{Output: []byte(output)})
}

// OnResponse scripts a full response for an exact command line.
func (f *FakeRunner) OnResponse(commandLine string, resp CommandResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[commandLine] = resp
	return f
}

// OnPrefix scripts output for any command line starting with prefix.
func (f *FakeRunner) OnPrefix(prefix, output string) *FakeRunner {
	return f.OnPrefixResponse(prefix, CommandResponse{Output: []byte(output)})
}

// OnPrefixResponse scripts a full response for a command prefix.
func (f *FakeRunner) OnPrefixResponse(prefix string, resp CommandResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefixResponse{prefix: prefix, resp: resp})
	return f
}

// Fail makes commands starting with prefix return an exec Failure.
func (f *FakeRunner) Fail(prefix string) *FakeRunner {
	return f.OnPrefixResponse(prefix, CommandResponse{
		Error: &gateway.Failure{Reason: gateway.ReasonExec, Command: prefix},
	})
}

// Execute implements gateway.Runner.
func (f *FakeRunner) Execute(ctx context.Context, commandLine string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, commandLine)
	resp, ok := f.exact[commandLine]
	if !ok {
		for _, p := range f.prefixes {
			if strings.HasPrefix(commandLine, p.prefix) {
				resp, ok = p.resp, true
				break
			}
		}
	}
	f.mu.Unlock()

	if !ok {
		return nil, &gateway.Failure{Reason: gateway.ReasonExec, Command: commandLine}
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return nil, &gateway.Failure{Reason: gateway.ReasonTimeout, Command: commandLine, Cause: ctx.Err()}
		}
	}

	if resp.Error != nil {
		return nil, resp.Error
	}
	return append([]byte(nil), resp.Output...), nil
}

// Calls returns every command line executed so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many executed command lines start with prefix.
func (f *FakeRunner) CallCount(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls, keeping scripted responses.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
