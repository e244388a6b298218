// Package predict turns classifier scores back into site predictions and
// runs whole documents through a model.
package predict

import (
	"errors"
	"fmt"

	"github.com/clair-gutierrez/sitetack/internal/kmer"
	"github.com/clair-gutierrez/sitetack/internal/sequence"
)

// ErrLengthMismatch means windows and probabilities differ in count.
var ErrLengthMismatch = errors.New("windows and probabilities differ in count")

// SitePrediction is the probability that one residue carries the PTM.
type SitePrediction struct {
	Site        int     `json:"site"`
	AminoAcid   string  `json:"amino_acid"`
	Probability float64 `json:"probability"`
}

// SequencePrediction groups the site predictions of one record.
type SequencePrediction struct {
	SequenceName    string           `json:"sequence_name"`
	Sequence        string           `json:"sequence"`
	SitePredictions []SitePrediction `json:"site_predictions"`
}

// SequencePredictions is the result for a whole document.
type SequencePredictions struct {
	SequencePredictions []SequencePrediction `json:"sequence_predictions"`
}

// Assemble zips windows and probabilities positionally: the i-th prediction
// carries the i-th window's site and centre with the i-th probability.
func Assemble(r sequence.Record, windows []kmer.Window, probabilities []float64) (SequencePrediction, error) {
	if len(windows) != len(probabilities) {
		return SequencePrediction{}, fmt.Errorf("%w: record %q has %d windows and %d probabilities",
			ErrLengthMismatch, r.ID, len(windows), len(probabilities))
	}
	sites := make([]SitePrediction, len(windows))
	for i, w := range windows {
		sites[i] = SitePrediction{
			Site:        w.Site,
			AminoAcid:   string(w.Center),
			Probability: probabilities[i],
		}
	}
	return SequencePrediction{SequenceName: r.ID, Sequence: r.Sequence, SitePredictions: sites}, nil
}

// Collect groups per-record predictions in document order.
func Collect(preds ...SequencePrediction) SequencePredictions {
	out := SequencePredictions{SequencePredictions: make([]SequencePrediction, 0, len(preds))}
	out.SequencePredictions = append(out.SequencePredictions, preds...)
	return out
}

// Sites returns the total number of site predictions.
func (s SequencePredictions) Sites() int {
	n := 0
	for _, sp := range s.SequencePredictions {
		n += len(sp.SitePredictions)
	}
	return n
}

// Filter keeps only sites whose probability is strictly above threshold.
// Records are kept even when none of their sites pass.
func (s SequencePredictions) Filter(threshold float64) SequencePredictions {
	out := SequencePredictions{SequencePredictions: make([]SequencePrediction, len(s.SequencePredictions))}
	for i, sp := range s.SequencePredictions {
		kept := make([]SitePrediction, 0, len(sp.SitePredictions))
		for _, p := range sp.SitePredictions {
			if p.Probability > threshold {
				kept = append(kept, p)
			}
		}
		sp.SitePredictions = kept
		out.SequencePredictions[i] = sp
	}
	return out
}

// Above reports whether the site is a hit at threshold.
func (p SitePrediction) Above(threshold float64) bool { return p.Probability > threshold }
