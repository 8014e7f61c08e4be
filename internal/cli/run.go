package cli

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stockflow/internal/compiler"
	"github.com/roach88/stockflow/internal/engine"
	"github.com/roach88/stockflow/internal/render"
	"github.com/roach88/stockflow/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Rounds int
	DB     string
}

// RunResult is the run command's JSON output payload.
type RunResult struct {
	RunID     string         `json:"run_id,omitempty"`
	Rounds    int            `json:"rounds"`
	Columns   []string       `json:"columns"`
	Snapshots []jsonSnapshot `json:"snapshots"`
}

// jsonSnapshot holds one round's displayable values. JSON has no
// encoding for non-finite numbers, so inf/-inf/nan values carry their
// rendered string forms instead.
type jsonSnapshot map[string]any

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <spec-file>",
		Short: "Compile a model spec and simulate it",
		Long: `Compile a model spec, simulate it for the requested number of
rounds, and print the resulting trajectory table. With --db the run and
its snapshots are also persisted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Rounds, "rounds", "r", 10, "number of rounds to simulate")
	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite database path for persisting the run")

	return cmd
}

func runRun(opts *RunOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if opts.Rounds < 0 {
		msg := fmt.Sprintf("rounds must be non-negative, got %d", opts.Rounds)
		formatter.Error("", msg)
		return WrapExitError(ExitCommandError, msg, nil)
	}

	text, err := readSpecFile(specPath, formatter)
	if err != nil {
		return err
	}

	model, err := compiler.Compile(text)
	if err != nil {
		return reportPipelineError(formatter, err)
	}
	snapshots, err := model.Run(opts.Rounds)
	if err != nil {
		return reportPipelineError(formatter, err)
	}

	var runID string
	if opts.DB != "" {
		runID, err = persistRun(cmd, opts, text, snapshots)
		if err != nil {
			formatter.Error("", err.Error())
			return WrapExitError(ExitCommandError, "persisting run", err)
		}
		slog.Info("run persisted", "run_id", runID, "db", opts.DB, "rounds", opts.Rounds)
	}

	if opts.Format == "json" {
		columns := render.Columns(model)
		return formatter.Success(RunResult{
			RunID:     runID,
			Rounds:    opts.Rounds,
			Columns:   columns,
			Snapshots: projectSnapshots(snapshots, columns),
		})
	}
	return formatter.Success(strings.TrimRight(render.Table(model, snapshots), "\n"))
}

// projectSnapshots restricts snapshots to the displayable columns and
// rewrites non-finite values as strings. Hidden infinite stocks are
// dropped entirely; a displayed stock can still hold inf (or nan via
// direct formula arithmetic) and must survive JSON encoding.
func projectSnapshots(snapshots []engine.Snapshot, columns []string) []jsonSnapshot {
	projected := make([]jsonSnapshot, len(snapshots))
	for i, snap := range snapshots {
		p := make(jsonSnapshot, len(columns))
		for _, name := range columns {
			v := snap[name]
			if math.IsInf(v, 0) || math.IsNaN(v) {
				p[name] = render.FormatValue(v)
			} else {
				p[name] = v
			}
		}
		projected[i] = p
	}
	return projected
}

func persistRun(cmd *cobra.Command, opts *RunOptions, text string, snapshots []engine.Snapshot) (string, error) {
	s, err := store.Open(opts.DB)
	if err != nil {
		return "", err
	}
	defer s.Close()

	run := store.Run{
		ID:        store.NewRunID(),
		SpecHash:  store.SpecHash(text),
		SpecText:  text,
		Rounds:    opts.Rounds,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.WriteRun(cmd.Context(), run, snapshots); err != nil {
		return "", err
	}
	return run.ID, nil
}
