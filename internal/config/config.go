// Package config holds the app wide settings, read by Viper from an optional
// config.json, SITETACK_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultAlphabet is the symbol set of the no-label models. The with-label
// models append one extra symbol per labelled site.
const DefaultAlphabet = "ARNDCEQGHILKMFPSTWYVXZ-U"

// ModelConfig binds one PTM/organism/label combination to a classifier.
type ModelConfig struct {
	PTM      string `mapstructure:"ptm" json:"ptm"`
	Organism string `mapstructure:"organism" json:"organism"`
	Label    string `mapstructure:"label" json:"label"`
	// Alphabet overrides the default symbol set for this model.
	Alphabet string `mapstructure:"alphabet" json:"alphabet,omitempty"`
	// Endpoint overrides the scorer endpoint for this model.
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty"`
	// ModelName is the name the model server knows this model by.
	ModelName string `mapstructure:"model_name" json:"model_name,omitempty"`
	// Encoding is one of indices, onehot, onehot_channel.
	Encoding string `mapstructure:"encoding" json:"encoding,omitempty"`
	// Command runs a local program instead of calling an endpoint.
	Command []string `mapstructure:"command" json:"command,omitempty"`
}

type Config struct {
	InputFasta  string `mapstructure:"input_fasta" json:"input_fasta"`
	OutputJSON  string `mapstructure:"output_json" json:"output_json"`
	LogFile     string `mapstructure:"log_file" json:"log_file"`
	LogLevel    string `mapstructure:"log_level" json:"log_level"`
	KmerLength  int    `mapstructure:"kmer_length" json:"kmer_length"`
	Concurrency int    `mapstructure:"concurrency" json:"concurrency"`

	// Scorer is "remote", "exec" or "mock".
	Scorer            string `mapstructure:"scorer" json:"scorer"`
	ScorerEndpoint    string `mapstructure:"scorer_endpoint" json:"scorer_endpoint"`
	ScorerTimeoutSecs int64  `mapstructure:"scorer_timeout_seconds" json:"scorer_timeout_seconds"`

	ScoreCachePath    string `mapstructure:"score_cache_path" json:"score_cache_path"`
	ScoreCacheTTLSecs int64  `mapstructure:"score_cache_ttl_seconds" json:"score_cache_ttl_seconds"`

	JobsStore string `mapstructure:"jobs_store" json:"jobs_store"`
	JobsPath  string `mapstructure:"jobs_path" json:"jobs_path"`
	Addr      string `mapstructure:"addr" json:"addr"`

	DefaultAlphabet string        `mapstructure:"default_alphabet" json:"default_alphabet"`
	Models          []ModelConfig `mapstructure:"models" json:"models"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_json", "predictions.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("kmer_length", 53)
	v.SetDefault("concurrency", 4)
	v.SetDefault("scorer", "mock")
	v.SetDefault("scorer_endpoint", "http://localhost:8501")
	v.SetDefault("scorer_timeout_seconds", 120)
	v.SetDefault("score_cache_ttl_seconds", 7*24*3600)
	v.SetDefault("jobs_store", "json")
	v.SetDefault("jobs_path", "jobs.json")
	v.SetDefault("addr", ":8080")
	v.SetDefault("default_alphabet", DefaultAlphabet)
}

// LoadConfig loads settings from the given path. If path is empty, looks
// for ./config.json; a missing file is not fatal and yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return Load(viper.New(), path)
}

// Load reads into v, which may already carry bound flags, and decodes the
// merged result.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("sitetack")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = "config.json"
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.Is(err, os.ErrNotExist), errors.As(err, &notFound):
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.KmerLength < 1 || c.KmerLength%2 == 0 {
		return fmt.Errorf("kmer_length must be a positive odd number, got %d", c.KmerLength)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch strings.ToLower(c.Scorer) {
	case "remote", "exec", "mock":
	default:
		return fmt.Errorf("unknown scorer %q (want remote, exec or mock)", c.Scorer)
	}
	switch strings.ToLower(c.JobsStore) {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown jobs_store %q (want json or sqlite)", c.JobsStore)
	}
	return nil
}
