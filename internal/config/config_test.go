package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.KmerLength != 53 || c.Scorer != "mock" || c.JobsStore != "json" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.DefaultAlphabet != DefaultAlphabet {
		t.Fatalf("default alphabet %q", c.DefaultAlphabet)
	}
}

func TestLoadConfigExplicitMissingFails(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "log_level": "debug",
  "kmer_length": 21,
  "scorer": "remote",
  "scorer_endpoint": "http://tf:8501",
  "jobs_store": "sqlite",
  "jobs_path": "jobs.db",
  "models": [
    {"ptm": "PHOSPHORYLATION_Y", "organism": "HUMAN", "label": "NO_LABELS", "model_name": "py", "encoding": "indices"}
  ]
}`
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LogLevel != "debug" || c.KmerLength != 21 || c.Scorer != "remote" || c.JobsStore != "sqlite" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Concurrency != 4 {
		t.Fatalf("default concurrency should survive a partial file, got %d", c.Concurrency)
	}
	if len(c.Models) != 1 || c.Models[0].ModelName != "py" || c.Models[0].Encoding != "indices" {
		t.Fatalf("unexpected models: %+v", c.Models)
	}
}

func TestLoadRejectsEvenKmerLength(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(`{"kmer_length": 52}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(p); err == nil {
		t.Fatalf("expected error for even kmer_length")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(`{"kmer_length": 21}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SITETACK_KMER_LENGTH", "15")
	c, err := Load(viper.New(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.KmerLength != 15 {
		t.Fatalf("expected env override 15, got %d", c.KmerLength)
	}
}

func TestValidate(t *testing.T) {
	good := Config{KmerLength: 53, Concurrency: 1, Scorer: "exec", JobsStore: "json"}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []Config{
		{KmerLength: 0, Concurrency: 1, Scorer: "mock", JobsStore: "json"},
		{KmerLength: 53, Concurrency: 0, Scorer: "mock", JobsStore: "json"},
		{KmerLength: 53, Concurrency: 1, Scorer: "gpu", JobsStore: "json"},
		{KmerLength: 53, Concurrency: 1, Scorer: "mock", JobsStore: "redis"},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
