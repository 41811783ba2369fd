package gateway

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/rileyhilliard/procmon/internal/errors"
)

// DefaultMaxInputLen is the longest command line the gateway accepts.
const DefaultMaxInputLen = 1024

// DefaultAllowedCommands are the read-only inspection tools that may start
// a command line.
var DefaultAllowedCommands = []string{
	"top", "ps", "nettop", "powermetrics", "vm_stat", "sysctl",
	"system_profiler", "sw_vers", "df", "cat", "nvidia-smi", "uname",
}

// DefaultTextFilters may only appear after a pipe, never as the first stage.
var DefaultTextFilters = []string{"grep", "awk", "head", "tail", "sed", "sort", "wc"}

// DefaultPipelineCommands may use pipes and quotes for their own
// post-processing.
var DefaultPipelineCommands = []string{"ps", "top", "nettop", "system_profiler", "df"}

// alwaysForbidden covers chaining, substitution, and escapes. No command
// may contain these, pipeline or not.
var alwaysForbidden = []string{";", "&", "`", "$(", "${", "\\", "\n", "\r"}

// pipelineOnly is allowed only for PipelineCommands.
var pipelineOnly = []string{"|", "'", "\""}

// neverRedirect is rejected for every command.
var neverRedirect = []string{">", "<"}

// filterDenied blocks the escape hatches text filters have for running
// other programs or writing files.
var filterDenied = map[string][]string{
	"awk": {"system", "getline"},
	"sed": {"-i", "--in-place"},
}

// Policy describes what the gateway will run. The zero value rejects
// everything; use DefaultPolicy.
type Policy struct {
	MaxInputLen      int
	AllowedCommands  []string
	TextFilters      []string
	PipelineCommands []string
}

// DefaultPolicy returns the allow-list used in production.
func DefaultPolicy() Policy {
	return Policy{
		MaxInputLen:      DefaultMaxInputLen,
		AllowedCommands:  DefaultAllowedCommands,
		TextFilters:      DefaultTextFilters,
		PipelineCommands: DefaultPipelineCommands,
	}
}

// Validate checks commandLine against the policy and returns the argv of
// each pipeline stage.
func (p Policy) Validate(commandLine string) ([][]string, error) {
	line := strings.TrimSpace(commandLine)
	if line == "" {
		return nil, reject(commandLine, "empty command")
	}
	if p.MaxInputLen > 0 && len(commandLine) > p.MaxInputLen {
		return nil, reject(commandLine, fmt.Sprintf("command longer than %d bytes", p.MaxInputLen))
	}

	for _, bad := range alwaysForbidden {
		if strings.Contains(line, bad) {
			return nil, reject(commandLine, fmt.Sprintf("contains forbidden sequence %q", bad))
		}
	}
	for _, bad := range neverRedirect {
		if strings.Contains(line, bad) {
			return nil, reject(commandLine, fmt.Sprintf("redirection %q is not allowed", bad))
		}
	}

	name := strings.Fields(line)[0]
	if !contains(p.AllowedCommands, name) {
		return nil, reject(commandLine, fmt.Sprintf("command %q is not in the allow-list", name))
	}

	if !contains(p.PipelineCommands, name) {
		for _, bad := range pipelineOnly {
			if strings.Contains(line, bad) {
				return nil, reject(commandLine, fmt.Sprintf("%q may not use %q", name, bad))
			}
		}
	}

	rawStages, err := splitPipeline(line)
	if err != nil {
		return nil, reject(commandLine, err.Error())
	}

	stages := make([][]string, 0, len(rawStages))
	for i, raw := range rawStages {
		argv, err := shlex.Split(raw)
		if err != nil {
			return nil, reject(commandLine, fmt.Sprintf("cannot tokenize stage %d: %v", i+1, err))
		}
		if len(argv) == 0 {
			return nil, reject(commandLine, fmt.Sprintf("stage %d is empty", i+1))
		}
		if err := p.checkStage(i, argv); err != nil {
			return nil, reject(commandLine, err.Error())
		}
		stages = append(stages, argv)
	}

	return stages, nil
}

func (p Policy) checkStage(index int, argv []string) error {
	name := argv[0]
	if index == 0 {
		if contains(p.TextFilters, name) {
			return fmt.Errorf("text filter %q cannot start a command", name)
		}
		if name == "cat" {
			return checkCatArgs(argv[1:])
		}
		return nil
	}

	if !contains(p.TextFilters, name) {
		return fmt.Errorf("%q is not a text filter and cannot follow a pipe", name)
	}
	joined := strings.Join(argv[1:], " ")
	for _, bad := range filterDenied[name] {
		if strings.Contains(joined, bad) {
			return fmt.Errorf("%s argument %q is not allowed", name, bad)
		}
	}
	return nil
}

// checkCatArgs confines cat to procfs.
func checkCatArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cat requires a /proc path")
	}
	for _, a := range args {
		if !strings.HasPrefix(a, "/proc/") || strings.Contains(a, "..") {
			return fmt.Errorf("cat may only read under /proc, got %q", a)
		}
	}
	return nil
}

// splitPipeline splits on pipes that are not inside quotes.
func splitPipeline(line string) ([]string, error) {
	var (
		stages []string
		cur    strings.Builder
		quote  rune
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '|':
			stages = append(stages, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	stages = append(stages, cur.String())
	return stages, nil
}

func reject(command, why string) *Failure {
	return &Failure{
		Reason:  ReasonRejected,
		Command: command,
		Cause:   errors.New(errors.ErrGateway, why, "Only allow-listed read-only tools can be run"),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
