package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stockflow/internal/compiler"
	"github.com/roach88/stockflow/internal/engine"
)

// StockSummary describes one compiled stock.
type StockSummary struct {
	Name     string `json:"name"`
	Initial  string `json:"initial,omitempty"`
	Maximum  string `json:"maximum,omitempty"`
	Infinite bool   `json:"infinite,omitempty"`
}

// FlowSummary describes one compiled flow.
type FlowSummary struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	Formula     string `json:"formula"`
}

// ModelSummary is the compile command's output payload.
type ModelSummary struct {
	Stocks    []StockSummary `json:"stocks"`
	Flows     []FlowSummary  `json:"flows"`
	InitOrder []string       `json:"init_order,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <spec-file>",
		Short: "Compile a model spec and print its structure",
		Long: `Compile a model spec to stocks, flows, and the safe initialization
order, without simulating it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			text, err := readSpecFile(args[0], formatter)
			if err != nil {
				return err
			}
			model, err := compiler.Compile(text)
			if err != nil {
				return reportPipelineError(formatter, err)
			}
			return formatter.Success(summarize(model))
		},
	}
}

func summarize(m *engine.Model) ModelSummary {
	summary := ModelSummary{InitOrder: m.InitializationOrder()}
	for _, s := range m.Stocks() {
		summary.Stocks = append(summary.Stocks, StockSummary{
			Name:     s.Name,
			Initial:  s.Initial.Source(),
			Maximum:  s.Maximum.Source(),
			Infinite: s.Infinite(),
		})
	}
	for _, f := range m.Flows() {
		summary.Flows = append(summary.Flows, FlowSummary{
			Source:      f.Source.Name,
			Destination: f.Destination.Name,
			Kind:        f.Rule.Kind.String(),
			Formula:     f.Rule.Formula.Source(),
		})
	}
	return summary
}

// String renders the summary for text output.
func (s ModelSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stocks (%d):\n", len(s.Stocks))
	for _, st := range s.Stocks {
		fmt.Fprintf(&b, "  %s", st.Name)
		if st.Infinite {
			b.WriteString(" [infinite]")
		}
		if st.Initial != "" {
			fmt.Fprintf(&b, " initial=%s", st.Initial)
		}
		if st.Maximum != "" {
			fmt.Fprintf(&b, " maximum=%s", st.Maximum)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "flows (%d):\n", len(s.Flows))
	for _, f := range s.Flows {
		fmt.Fprintf(&b, "  %s > %s @ %s(%s)\n", f.Source, f.Destination, f.Kind, f.Formula)
	}
	if len(s.InitOrder) > 0 {
		fmt.Fprintf(&b, "init order: %s", strings.Join(s.InitOrder, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// readSpecFile loads a spec file, reporting failures through the
// formatter with a command-error exit code.
func readSpecFile(path string, formatter *OutputFormatter) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		formatter.Error("", fmt.Sprintf("reading spec file: %v", err))
		return "", WrapExitError(ExitCommandError, "reading spec file", err)
	}
	return string(data), nil
}

// reportPipelineError emits a compile/run failure in the configured
// format and returns a model-failure exit error.
func reportPipelineError(formatter *OutputFormatter, err error) error {
	formatter.Error(compiler.ErrorCode(err), err.Error())
	return WrapExitError(ExitFailure, "model failure", err)
}
