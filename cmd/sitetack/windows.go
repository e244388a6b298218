package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clair-gutierrez/sitetack/internal/fasta"
	"github.com/clair-gutierrez/sitetack/internal/sequence"
)

var windowsModel modelFlags

// windowsCmd dumps the windows a prediction would score, one per line:
// <record>\t<site>\t<residue>\t<window>\t<left pad>\t<right pad>
var windowsCmd = &cobra.Command{
	Use:   "windows [input.fasta|-]",
	Short: "Print the k-mer windows cut around each candidate site",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closeLog()

		text, _, err := e.readInput(args)
		if err != nil {
			return err
		}
		p, err := e.predictor(&windowsModel)
		if err != nil {
			return err
		}
		if err := fasta.Validate(text, p.Alphabet); err != nil {
			return err
		}
		records, err := fasta.Parse(text, p.Alphabet)
		if err != nil {
			return err
		}
		return writeWindows(cmd.OutOrStdout(), records, p.KmerLength, p.AminoAcids)
	},
}

func init() {
	rootCmd.AddCommand(windowsCmd)
	windowsModel.register(windowsCmd)
}

func writeWindows(w io.Writer, records []sequence.Record, length int, aminoAcids []byte) error {
	for _, r := range records {
		ws, err := r.KmersFor(length, aminoAcids)
		if err != nil {
			return err
		}
		for _, win := range ws {
			left, right := win.Padding()
			if _, err := fmt.Fprintf(w, "%s\t%d\t%c\t%s\t%d\t%d\n", r.ID, win.Site, win.Center, win.Subsequence, left, right); err != nil {
				return err
			}
		}
	}
	return nil
}
