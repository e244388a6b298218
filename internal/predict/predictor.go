package predict

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/encode"
	"github.com/clair-gutierrez/sitetack/internal/fasta"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
	"github.com/clair-gutierrez/sitetack/internal/logging"
	"github.com/clair-gutierrez/sitetack/internal/model"
	"github.com/clair-gutierrez/sitetack/internal/scorer"
	"github.com/clair-gutierrez/sitetack/internal/sequence"
)

// DefaultKmerLength is the window length the published models were trained on.
const DefaultKmerLength = 53

// Predictor runs FASTA documents through one model.
type Predictor struct {
	Alphabet   alphabet.Alphabet
	Scorer     scorer.Scorer
	KmerLength int
	// AminoAcids are the residues windows are centred on, e.g. "ST".
	AminoAcids []byte
	// Concurrency bounds how many records are scored at once.
	Concurrency int
	Logger      *log.Logger
}

// ForKey builds a Predictor for the model registered under k.
func ForKey(r *model.Registry, k model.Key, length int) (*Predictor, error) {
	e, err := r.Lookup(k)
	if err != nil {
		return nil, err
	}
	return &Predictor{
		Alphabet:   e.Alphabet,
		Scorer:     e.Scorer,
		KmerLength: length,
		AminoAcids: k.Ptm.AminoAcids(),
	}, nil
}

func (p *Predictor) logger() *log.Logger {
	if p.Logger == nil {
		return logging.Discard()
	}
	return p.Logger
}

func (p *Predictor) length() int {
	if p.KmerLength <= 0 {
		return DefaultKmerLength
	}
	return p.KmerLength
}

// OnFasta validates text against the model alphabet, parses it and scores
// every record. Validation failures come back as *fasta.ValidationError.
func (p *Predictor) OnFasta(ctx context.Context, text string) (SequencePredictions, error) {
	if err := fasta.Validate(text, p.Alphabet); err != nil {
		return SequencePredictions{}, err
	}
	records, err := fasta.Parse(text, p.Alphabet)
	if err != nil {
		return SequencePredictions{}, err
	}
	return p.OnRecords(ctx, records)
}

// OnRecord scores one record. Sites are grouped by residue in AminoAcids
// order, then by position. A record with no candidate residues yields an
// empty site list without calling the scorer.
func (p *Predictor) OnRecord(ctx context.Context, r sequence.Record) (SequencePrediction, error) {
	windows, err := r.KmersFor(p.length(), p.AminoAcids)
	if err != nil {
		return SequencePrediction{}, p.internal(err, "record", r.ID)
	}
	if len(windows) == 0 {
		return SequencePrediction{SequenceName: r.ID, Sequence: r.Sequence, SitePredictions: []SitePrediction{}}, nil
	}

	batch, err := encode.IndexBatch(windows, p.Alphabet, p.length())
	if err != nil {
		return SequencePrediction{}, p.internal(err, "record", r.ID)
	}
	start := time.Now()
	probs, err := scorer.Checked(p.Scorer).Score(ctx, batch)
	if err != nil {
		return SequencePrediction{}, p.internal(err, "record", r.ID, "windows", batch.Len())
	}
	p.logger().Debug("scored record", "record", r.ID, "windows", batch.Len(), "duration_ms", time.Since(start).Milliseconds())

	sp, err := Assemble(r, windows, probs)
	if err != nil {
		return SequencePrediction{}, p.internal(err, "record", r.ID)
	}
	return sp, nil
}

// OnRecords scores records on a bounded worker pool and returns them in
// input order. The first error cancels the remaining work.
func (p *Predictor) OnRecords(ctx context.Context, records []sequence.Record) (SequencePredictions, error) {
	workers := p.Concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(records) {
		workers = len(records)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx  int
		pred SequencePrediction
		err  error
	}
	tasks := make(chan int)
	results := make(chan result, len(records))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				sp, err := p.OnRecord(ctx, records[idx])
				if err != nil {
					cancel()
				}
				results <- result{idx: idx, pred: sp, err: err}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i := range records {
			select {
			case tasks <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	preds := make([]SequencePrediction, len(records))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = r.err
			}
			continue
		}
		preds[r.idx] = r.pred
	}
	if firstErr != nil {
		return SequencePredictions{}, firstErr
	}
	if err := ctx.Err(); err != nil && len(records) > 0 {
		return SequencePredictions{}, err
	}

	out := Collect(preds...)
	p.logger().Info("predicted", "records", len(records), "sites", out.Sites())
	return out, nil
}

// internal logs a consistency or scoring failure at error level and passes
// it on unchanged.
func (p *Predictor) internal(err error, keyvals ...interface{}) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, kmer.ErrInvariantViolation) ||
		errors.Is(err, encode.ErrInconsistentWindowLength) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, scorer.ErrLengthMismatch) ||
		errors.Is(err, scorer.ErrProbabilityRange) {
		p.logger().Error("internal consistency failure", append(keyvals, "err", err)...)
	} else {
		p.logger().Error("prediction failed", append(keyvals, "err", err)...)
	}
	return err
}
