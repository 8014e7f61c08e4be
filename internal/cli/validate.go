package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockflow/internal/compiler"
)

// ValidationResult is the validate command's output payload.
type ValidationResult struct {
	Valid  bool `json:"valid"`
	Stocks int  `json:"stocks"`
	Flows  int  `json:"flows"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	return fmt.Sprintf("valid: %d stocks, %d flows", r.Stocks, r.Flows)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <spec-file>",
		Short:         "Validate a model spec without running it",
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
			return formatter.Success(ValidationResult{
				Valid:  true,
				Stocks: len(model.Stocks()),
				Flows:  len(model.Flows()),
			})
		},
	}
}
