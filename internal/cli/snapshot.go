package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/logger"
	"github.com/rileyhilliard/procmon/internal/monitor"
	"github.com/rileyhilliard/procmon/internal/reconcile"
	"github.com/rileyhilliard/procmon/internal/ui"
	"github.com/rileyhilliard/procmon/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats for snapshot.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// snapshotTimeout bounds one collection pass plus the host details lookup.
const snapshotTimeout = 15 * time.Second

type snapshotOptions struct {
	Format string
	Filter string
	Sort   string
	Asc    bool
	Limit  int
	Specs  bool
	Width  int
}

var snapshotFlags snapshotOptions

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Collect once and print the process table",
	Long: `Run every collection source once and print the merged result.

The table format is meant for people; yaml and json keep every field and are
stable for scripts. The filter uses the same expressions as the dashboard.

Examples:
  procmon snapshot
  procmon snapshot --filter 'type:user cpu:5+' --limit 10
  procmon snapshot --sort mem --format json
  procmon snapshot --specs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := snapshotFlags
		if opts.Format == FormatJSON {
			machineMode = true
		}

		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}

		coll := newCollector(cfg, logger.Default())
		spin := ui.NewSpinner(os.Stderr, "Sampling processes", opts.Format == FormatTable && isTerminal(os.Stderr))
		spin.Start()

		doc, err := collectSnapshot(cmd.Context(), coll, opts)
		if err != nil {
			spin.Fail("Sampling failed")
			return err
		}
		spin.Stop()

		if opts.Width == 0 {
			opts.Width = terminalWidth(os.Stdout)
		}
		return writeSnapshot(cmd.OutOrStdout(), doc, opts)
	},
}

// snapshotSource is the part of the collector snapshot needs.
type snapshotSource interface {
	CollectOnce(ctx context.Context) (collector.Snapshot, error)
	Specs(ctx context.Context) (collector.HostSpecs, error)
}

// snapshotDoc is the printed form of one collection.
type snapshotDoc struct {
	CollectedAt time.Time                 `json:"collected_at" yaml:"collected_at"`
	CPUPercent  float64                   `json:"cpu_percent" yaml:"cpu_percent"`
	MemPercent  float64                   `json:"mem_percent" yaml:"mem_percent"`
	GPU         string                    `json:"gpu" yaml:"gpu"`
	Summary     collector.SystemSummary   `json:"summary" yaml:"summary"`
	Flags       []string                  `json:"flags,omitempty" yaml:"flags,omitempty"`
	Filter      string                    `json:"filter,omitempty" yaml:"filter,omitempty"`
	Total       int                       `json:"total" yaml:"total"`
	Processes   []collector.ProcessRecord `json:"processes" yaml:"processes"`
	Specs       *collector.HostSpecs      `json:"specs,omitempty" yaml:"specs,omitempty"`
}

func collectSnapshot(ctx context.Context, src snapshotSource, opts snapshotOptions) (snapshotDoc, error) {
	if err := validateFormat(opts.Format); err != nil {
		return snapshotDoc{}, err
	}
	if opts.Limit < 0 {
		return snapshotDoc{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("--limit must be zero or more, got %d", opts.Limit),
			"Use --limit 0 to print every process")
	}

	pred, err := reconcile.ParsePredicate(opts.Filter)
	if err != nil {
		return snapshotDoc{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snap, err := src.CollectOnce(ctx)
	if err != nil {
		return snapshotDoc{}, err
	}

	doc := snapshotDoc{
		CollectedAt: snap.CollectedAt,
		CPUPercent:  snap.CPUPercent,
		MemPercent:  snap.MemPercent,
		GPU:         snap.GPU,
		Summary:     snap.Summary,
		Flags:       snapshotFlagsOf(snap),
		Filter:      pred.String(),
		Total:       len(snap.Processes),
		Processes:   make([]collector.ProcessRecord, 0, len(snap.Processes)),
	}
	for _, rec := range snap.Processes {
		if pred.Match(rec) {
			doc.Processes = append(doc.Processes, rec)
		}
	}

	col := monitor.ParseSortColumn(opts.Sort)
	desc := col.DescendingByDefault()
	if opts.Asc {
		desc = false
	}
	monitor.SortRecords(doc.Processes, col, desc)
	if opts.Limit > 0 && len(doc.Processes) > opts.Limit {
		doc.Processes = doc.Processes[:opts.Limit]
	}

	if opts.Specs {
		specs, err := src.Specs(ctx)
		if err != nil {
			return snapshotDoc{}, err
		}
		doc.Specs = &specs
	}
	return doc, nil
}

func snapshotFlagsOf(snap collector.Snapshot) []string {
	var flags []string
	if snap.Throttled {
		flags = append(flags, "throttled")
	}
	if snap.Partial {
		flags = append(flags, "partial")
	}
	if snap.Truncated {
		flags = append(flags, "truncated")
	}
	return flags
}

func writeSnapshot(w io.Writer, doc snapshotDoc, opts snapshotOptions) error {
	switch opts.Format {
	case FormatJSON:
		return WriteJSONSuccess(w, doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.WrapWithCode(err, errors.ErrParse, "Couldn't encode the snapshot as YAML", "")
		}
		return enc.Close()
	}

	var b strings.Builder
	if doc.Specs != nil {
		b.WriteString(ui.RenderHeader(ui.HeaderInfo{Host: doc.Specs.Hostname}))
		b.WriteString(ui.RenderKeyValues(ui.SpecRows(*doc.Specs)))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "CPU %s%%  MEM %s%%  GPU %s\n",
		ui.FormatPercent(doc.CPUPercent), ui.FormatPercent(doc.MemPercent), doc.GPU)
	for _, line := range doc.Summary.Lines() {
		b.WriteString(ui.MutedStyle().Render(line))
		b.WriteString("\n")
	}
	if len(doc.Flags) > 0 {
		b.WriteString(ui.WarningStyle().Render(ui.SymbolWarning + " " + util.JoinOrNone(doc.Flags)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(ui.RenderProcessTable(doc.Processes, opts.Width))
	b.WriteString("\n")

	shown := fmt.Sprintf("%d of %d %s", len(doc.Processes), doc.Total, util.Pluralize(doc.Total, "process", "processes"))
	if doc.Filter != "" {
		shown += " matching " + doc.Filter
	}
	b.WriteString(ui.MutedStyle().Render(shown))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func validateFormat(format string) error {
	switch format {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown output format %q", format),
		"Use one of: table, yaml, json")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 120 when it isn't a terminal.
func terminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}
