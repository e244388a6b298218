package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clair-gutierrez/sitetack/internal/fasta"
	"github.com/clair-gutierrez/sitetack/internal/predict"
)

var (
	predictModel     modelFlags
	predictFormat    string
	predictThreshold float64
	predictDryRun    bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [input.fasta|-]",
	Short: "Score every candidate site of a FASTA file",
	Long: `Validates the FASTA against the model alphabet, cuts a window around every
residue the PTM can occur on and writes the scored sites as JSON or CSV.

	sitetack predict --ptm PHOSPHORYLATION_ST --organism HUMAN proteins.fasta --out -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictModel.register(predictCmd)
	predictCmd.Flags().String("out", "", "output path, - for stdout (default from output_json)")
	predictCmd.Flags().StringVar(&predictFormat, "format", "", "json or csv (default from the output extension)")
	predictCmd.Flags().Float64Var(&predictThreshold, "threshold", -1, "keep only sites above this probability")
	predictCmd.Flags().BoolVar(&predictDryRun, "dry-run", false, "validate and count windows without scoring")
	settings.BindPFlag("output_json", predictCmd.Flags().Lookup("out"))
}

func runPredict(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.closeLog()

	text, inPath, err := e.readInput(args)
	if err != nil {
		return err
	}
	p, err := e.predictor(&predictModel)
	if err != nil {
		return err
	}
	e.logger.Info("starting sitetack", "input_fasta", inPath, "ptm", predictModel.ptm, "organism", predictModel.organism,
		"label", predictModel.label, "kmer_length", p.KmerLength)

	if predictDryRun {
		return dryRun(e, p, text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()
	res, err := p.OnFasta(ctx, text)
	if err != nil {
		if ve, ok := fasta.AsValidationError(err); ok {
			return fmt.Errorf("invalid FASTA (%s): %s", ve.Kind, ve.Reason)
		}
		return err
	}
	e.logger.Info("prediction finished", "records", len(res.SequencePredictions), "sites", res.Sites(),
		"duration_ms", time.Since(start).Milliseconds())
	if predictThreshold >= 0 {
		res = res.Filter(predictThreshold)
		e.logger.Debug("applied threshold", "threshold", predictThreshold, "sites", res.Sites())
	}

	outPath := e.cfg.OutputJSON
	format := predictFormat
	if format == "" {
		format = "json"
		if strings.HasSuffix(strings.ToLower(outPath), ".csv") {
			format = "csv"
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "-" && outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	if err := writeResult(w, format, res); err != nil {
		return err
	}
	if outPath != "-" && outPath != "" {
		e.logger.Info("wrote predictions", "path", outPath, "format", format)
	}
	return nil
}

func writeResult(w io.Writer, format string, res predict.SequencePredictions) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "csv":
		return predict.WriteCSV(w, res)
	default:
		return fmt.Errorf("unknown output format %q (want json or csv)", format)
	}
}

func dryRun(e *env, p *predict.Predictor, text string) error {
	if err := fasta.Validate(text, p.Alphabet); err != nil {
		return err
	}
	records, err := fasta.Parse(text, p.Alphabet)
	if err != nil {
		return err
	}
	total := 0
	for _, r := range records {
		ws, err := r.KmersFor(p.KmerLength, p.AminoAcids)
		if err != nil {
			return err
		}
		e.logger.Debug("record windows", "record", r.ID, "length", r.Len(), "windows", len(ws))
		total += len(ws)
	}
	e.logger.Info("dry-run: would score windows", "records", len(records), "windows", total)
	return nil
}
