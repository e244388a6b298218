package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/logging"
	"github.com/clair-gutierrez/sitetack/internal/model"
	"github.com/clair-gutierrez/sitetack/internal/predict"
)

// version can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

var (
	settings = viper.New()

	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sitetack",
	Short: "Predict post-translational modification sites in protein sequences",
	Long: `sitetack scans FASTA protein sequences for residues a PTM can occur on,
cuts a fixed-width window around each one and scores the windows with a
trained classifier.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config.json (optional)")
	pf.BoolVar(&verbose, "verbose", false, "enable verbose (debug) logging")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also append logs to this file")
	pf.Int("kmer-length", predict.DefaultKmerLength, "window length, must be odd")
	pf.String("scorer", "", "scorer backend: remote, exec or mock")
	pf.Int("concurrency", 0, "records scored in parallel")

	settings.BindPFlag("log_level", pf.Lookup("log-level"))
	settings.BindPFlag("log_file", pf.Lookup("log-file"))
	settings.BindPFlag("kmer_length", pf.Lookup("kmer-length"))
	settings.BindPFlag("scorer", pf.Lookup("scorer"))
	settings.BindPFlag("concurrency", pf.Lookup("concurrency"))
}

// env is what every subcommand works with once flags are parsed.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
}

func setup() (*env, error) {
	cfg, err := config.Load(settings, configPath)
	if err != nil {
		return nil, err
	}
	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: verbose})
	logger.Debug("loaded config", "config", configPath, "kmer_length", cfg.KmerLength, "scorer", cfg.Scorer,
		"concurrency", cfg.Concurrency, "models", len(cfg.Models))
	return &env{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

// modelFlags are shared by the commands that run against one model.
type modelFlags struct {
	ptm, organism, label string
}

func (m *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.ptm, "ptm", model.PhosphorylationST.String(), "PTM kind (see sitetack kinds)")
	cmd.Flags().StringVar(&m.organism, "organism", model.Human.String(), "organism kind")
	cmd.Flags().StringVar(&m.label, "label", model.NoLabels.String(), "label kind")
}

func (m *modelFlags) key() (model.Key, error) {
	return model.ParseKey(m.ptm, m.organism, m.label)
}

// predictor resolves the model for m and wires the configured scorer.
func (e *env) predictor(m *modelFlags) (*predict.Predictor, error) {
	k, err := m.key()
	if err != nil {
		return nil, err
	}
	reg, err := model.FromConfig(e.cfg, model.ConfiguredScorers(e.cfg))
	if err != nil {
		return nil, err
	}
	p, err := predict.ForKey(reg, k, e.cfg.KmerLength)
	if err != nil {
		return nil, err
	}
	p.Concurrency = e.cfg.Concurrency
	p.Logger = e.logger.With("model", k.String())
	return p, nil
}

// readInput reads the FASTA named by path, the configured input, or stdin
// for "-".
func (e *env) readInput(args []string) (string, string, error) {
	path := e.cfg.InputFasta
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return "", "", fmt.Errorf("no input FASTA given")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", path, fmt.Errorf("failed to read input fasta %s: %w", path, err)
	}
	return string(data), path, nil
}
