package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clair-gutierrez/sitetack/internal/fasta"
)

var (
	validateModel modelFlags
	validatePrint bool
)

// fastaLineWidth wraps sequences printed by validate --print.
const fastaLineWidth = 60

// validateCmd checks a FASTA file against a model's alphabet without scoring.
var validateCmd = &cobra.Command{
	Use:   "validate [input.fasta|-]",
	Short: "Check a FASTA file against a model alphabet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closeLog()

		text, path, err := e.readInput(args)
		if err != nil {
			return err
		}
		p, err := e.predictor(&validateModel)
		if err != nil {
			return err
		}
		if err := fasta.Validate(text, p.Alphabet); err != nil {
			if ve, ok := fasta.AsValidationError(err); ok {
				e.logger.Warn("invalid FASTA", "path", path, "kind", ve.Kind.String(), "line", ve.Line)
			}
			return err
		}
		records, err := fasta.Parse(text, p.Alphabet)
		if err != nil {
			return err
		}
		if validatePrint {
			return fasta.Format(cmd.OutOrStdout(), records, fastaLineWidth)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d records\n", path, len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateModel.register(validateCmd)
	validateCmd.Flags().BoolVar(&validatePrint, "print", false, "print the parsed records as normalized FASTA")
}
