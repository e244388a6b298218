package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/scorer"
)

// ConfiguredScorers returns the factory FromConfig uses in the binaries. The
// cfg.Scorer setting picks the backend; remote and exec scores go through a
// shared on-disk cache.
func ConfiguredScorers(cfg *config.Config) ScorerFactory {
	var cache *scorer.Cache
	timeout := time.Duration(cfg.ScorerTimeoutSecs) * time.Second

	return func(k Key, mc config.ModelConfig) (scorer.Scorer, error) {
		enc, err := scorer.ParseEncoding(mc.Encoding)
		if err != nil {
			return nil, err
		}

		var s scorer.Scorer
		backend := strings.ToLower(cfg.Scorer)
		if len(mc.Command) > 0 {
			backend = "exec"
		}
		switch backend {
		case "mock":
			return scorer.Mock{Salt: mc.ModelName}, nil
		case "remote":
			endpoint := mc.Endpoint
			if endpoint == "" {
				endpoint = cfg.ScorerEndpoint
			}
			if endpoint == "" {
				return nil, fmt.Errorf("no scorer endpoint configured")
			}
			s = scorer.NewRemote(endpoint, mc.ModelName, enc, timeout)
		case "exec":
			if len(mc.Command) == 0 {
				return nil, fmt.Errorf("exec scorer needs a command")
			}
			s = scorer.Exec{Path: mc.Command[0], Args: mc.Command[1:], Encoding: enc, Timeout: timeout}
		default:
			return nil, fmt.Errorf("unknown scorer %q", cfg.Scorer)
		}

		if cache == nil {
			cache = scorer.NewCache(cfg.ScoreCachePath, time.Duration(cfg.ScoreCacheTTLSecs)*time.Second)
		}
		return scorer.Cached{Next: s, Cache: cache, Namespace: mc.ModelName}, nil
	}
}
