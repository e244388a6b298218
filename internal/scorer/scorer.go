// Package scorer is the boundary to the trained classifier. A Scorer maps an
// encoded batch of windows to one probability per window, in batch order.
// The classifier itself lives outside this module; the implementations here
// reach it over HTTP or a subprocess, or stand in for it deterministically.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/clair-gutierrez/sitetack/internal/encode"
)

var (
	// ErrLengthMismatch means the classifier returned the wrong number of scores.
	ErrLengthMismatch = errors.New("score count does not match batch size")
	// ErrProbabilityRange means a returned score fell outside [0,1].
	ErrProbabilityRange = errors.New("probability outside [0,1]")
)

// Scorer scores an encoded batch. Implementations must be deterministic for
// a fixed batch and model and must preserve order.
type Scorer interface {
	Score(ctx context.Context, batch encode.Batch) ([]float64, error)
}

// Func adapts a function to Scorer.
type Func func(ctx context.Context, batch encode.Batch) ([]float64, error)

func (f Func) Score(ctx context.Context, batch encode.Batch) ([]float64, error) {
	return f(ctx, batch)
}

// Check verifies that probs is a valid response for batch.
func Check(batch encode.Batch, probs []float64) error {
	if len(probs) != batch.Len() {
		return fmt.Errorf("%w: %d scores for %d windows", ErrLengthMismatch, len(probs), batch.Len())
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: score %d is %v", ErrProbabilityRange, i, p)
		}
	}
	return nil
}

// Checked wraps s so that every response is validated with Check.
func Checked(s Scorer) Scorer {
	return Func(func(ctx context.Context, batch encode.Batch) ([]float64, error) {
		if batch.Len() == 0 {
			return nil, nil
		}
		probs, err := s.Score(ctx, batch)
		if err != nil {
			return nil, err
		}
		if err := Check(batch, probs); err != nil {
			return nil, err
		}
		return probs, nil
	})
}
