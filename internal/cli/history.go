package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stockflow/internal/compiler"
	"github.com/roach88/stockflow/internal/render"
	"github.com/roach88/stockflow/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB string
}

// RunListing is the history command's list payload.
type RunListing struct {
	Runs []RunEntry `json:"runs"`
}

// RunEntry describes one persisted run.
type RunEntry struct {
	ID        string `json:"id"`
	SpecHash  string `json:"spec_hash"`
	Rounds    int    `json:"rounds"`
	CreatedAt string `json:"created_at"`
}

// String renders the listing for text output.
func (l RunListing) String() string {
	if len(l.Runs) == 0 {
		return "no runs"
	}
	var b strings.Builder
	for i, r := range l.Runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%s\trounds=%d\t%s", r.ID, r.CreatedAt, r.Rounds, r.SpecHash[:12])
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List persisted runs or re-render one",
		Long: `Without arguments, list the runs persisted in the database. With a
run ID, recompile the stored spec and re-render that run's trajectory
table.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite database path (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	s, err := store.Open(opts.DB)
	if err != nil {
		formatter.Error("", err.Error())
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer s.Close()

	if len(args) == 0 {
		runs, err := s.ListRuns(cmd.Context())
		if err != nil {
			formatter.Error("", err.Error())
			return WrapExitError(ExitCommandError, "listing runs", err)
		}
		listing := RunListing{Runs: []RunEntry{}}
		for _, r := range runs {
			listing.Runs = append(listing.Runs, RunEntry{
				ID:        r.ID,
				SpecHash:  r.SpecHash,
				Rounds:    r.Rounds,
				CreatedAt: r.CreatedAt.Format(time.RFC3339),
			})
		}
		return formatter.Success(listing)
	}

	run, snapshots, err := s.ReadRun(cmd.Context(), args[0])
	if err != nil {
		formatter.Error("", err.Error())
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	// The stored spec is the source of truth for column order; models
	// themselves are never persisted.
	model, err := compiler.Compile(run.SpecText)
	if err != nil {
		return reportPipelineError(formatter, err)
	}
	return formatter.Success(strings.TrimRight(render.Table(model, snapshots), "\n"))
}
