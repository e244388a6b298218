package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/encode"
	"github.com/clair-gutierrez/sitetack/internal/fasta"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
	"github.com/clair-gutierrez/sitetack/internal/model"
	"github.com/clair-gutierrez/sitetack/internal/scorer"
	"github.com/clair-gutierrez/sitetack/internal/sequence"
)

var testAlphabet = alphabet.MustNew(config.DefaultAlphabet)

// rankScorer gives the i-th window of a batch probability (i+1)/10.
func rankScorer() scorer.Func {
	return func(_ context.Context, b encode.Batch) ([]float64, error) {
		out := make([]float64, b.Len())
		for i := range out {
			out[i] = float64(i+1) / 10
		}
		return out, nil
	}
}

func TestAssemblePositionalLaw(t *testing.T) {
	r := sequence.Record{ID: "p1", Sequence: "SMASLEKS"}
	windows, err := kmer.Scan(r.Sequence, 'S', 7)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	probs := []float64{0.9, 0.1, 0.5}
	sp, err := Assemble(r, windows, probs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.SequenceName != "p1" || sp.Sequence != "SMASLEKS" {
		t.Fatalf("unexpected grouping %+v", sp)
	}
	for i, p := range sp.SitePredictions {
		if p.Probability != probs[i] || p.Site != windows[i].Site || p.AminoAcid != string(windows[i].Center) {
			t.Fatalf("prediction %d = %+v does not match window %+v / prob %v", i, p, windows[i], probs[i])
		}
	}
}

func TestAssembleLengthMismatch(t *testing.T) {
	r := sequence.Record{ID: "p1", Sequence: "SMASLEKS"}
	windows, _ := kmer.Scan(r.Sequence, 'S', 7)
	if _, err := Assemble(r, windows, []float64{0.1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestOnFastaScenario(t *testing.T) {
	var seen []string
	s := scorer.Func(func(ctx context.Context, b encode.Batch) ([]float64, error) {
		for _, row := range b.Indices {
			w, err := encode.Decode(row, testAlphabet)
			if err != nil {
				return nil, err
			}
			seen = append(seen, w)
		}
		return rankScorer()(ctx, b)
	})
	p := &Predictor{Alphabet: testAlphabet, Scorer: s, KmerLength: 7, AminoAcids: []byte("S")}

	got, err := p.OnFasta(context.Background(), ">p1\nSMAS\nLEKS\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"---SMAS", "SMASLEK", "LEKS---"}; !reflect.DeepEqual(seen, want) {
		t.Fatalf("scored windows %v, want %v", seen, want)
	}
	want := SequencePredictions{SequencePredictions: []SequencePrediction{{
		SequenceName: "p1",
		Sequence:     "SMASLEKS",
		SitePredictions: []SitePrediction{
			{Site: 1, AminoAcid: "S", Probability: 0.1},
			{Site: 4, AminoAcid: "S", Probability: 0.2},
			{Site: 8, AminoAcid: "S", Probability: 0.3},
		},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestOnRecordGroupsByResidueThenSite(t *testing.T) {
	p := &Predictor{Alphabet: testAlphabet, Scorer: rankScorer(), KmerLength: 5, AminoAcids: []byte("ST")}
	sp, err := p.OnRecord(context.Background(), sequence.Record{ID: "x", Sequence: "TASTS"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sites []int
	for _, s := range sp.SitePredictions {
		sites = append(sites, s.Site)
	}
	if want := []int{3, 5, 1, 4}; !reflect.DeepEqual(sites, want) {
		t.Fatalf("sites %v, want %v", sites, want)
	}
}

func TestOnRecordWithoutSitesSkipsScorer(t *testing.T) {
	s := scorer.Func(func(context.Context, encode.Batch) ([]float64, error) {
		t.Fatalf("scorer should not be called")
		return nil, nil
	})
	p := &Predictor{Alphabet: testAlphabet, Scorer: s, KmerLength: 7, AminoAcids: []byte("Y")}
	sp, err := p.OnRecord(context.Background(), sequence.Record{ID: "x", Sequence: "SMASLEKS"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.SitePredictions == nil || len(sp.SitePredictions) != 0 {
		t.Fatalf("expected empty non-nil site list, got %#v", sp.SitePredictions)
	}
	b, _ := json.Marshal(sp)
	if !strings.Contains(string(b), `"site_predictions":[]`) {
		t.Fatalf("empty site list should serialise as [], got %s", b)
	}
}

func TestOnFastaValidationError(t *testing.T) {
	p := &Predictor{Alphabet: testAlphabet, Scorer: rankScorer(), KmerLength: 7, AminoAcids: []byte("S")}
	_, err := p.OnFasta(context.Background(), ">h\nAC#T")
	if !errors.Is(err, fasta.ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
	if _, ok := fasta.AsValidationError(err); !ok {
		t.Fatalf("expected a *fasta.ValidationError, got %T", err)
	}
}

func TestOnFastaIndentedHeaders(t *testing.T) {
	p := &Predictor{Alphabet: testAlphabet, Scorer: rankScorer(), KmerLength: 7, AminoAcids: []byte("ST")}
	res, err := p.OnFasta(context.Background(), " >a\nSMAS\n  >b\nTKT\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.SequencePredictions) != 2 {
		t.Fatalf("expected 2 records, got %+v", res.SequencePredictions)
	}
	if a, b := res.SequencePredictions[0], res.SequencePredictions[1]; a.SequenceName != "a" || a.Sequence != "SMAS" || b.SequenceName != "b" || len(b.SitePredictions) != 2 {
		t.Fatalf("unexpected records %+v", res.SequencePredictions)
	}
}

func TestOnRecordsPreservesOrderAcrossWorkers(t *testing.T) {
	var records []sequence.Record
	for i := 0; i < 20; i++ {
		seq := strings.Repeat("A", i) + "S"
		records = append(records, sequence.Record{ID: string(rune('a' + i)), Sequence: seq})
	}
	var calls int32
	s := scorer.Func(func(ctx context.Context, b encode.Batch) ([]float64, error) {
		atomic.AddInt32(&calls, 1)
		return rankScorer()(ctx, b)
	})
	p := &Predictor{Alphabet: testAlphabet, Scorer: s, KmerLength: 7, AminoAcids: []byte("S"), Concurrency: 4}
	got, err := p.OnRecords(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.SequencePredictions) != len(records) || calls != int32(len(records)) {
		t.Fatalf("expected %d results and calls, got %d results %d calls", len(records), len(got.SequencePredictions), calls)
	}
	for i, sp := range got.SequencePredictions {
		if sp.SequenceName != records[i].ID {
			t.Fatalf("result %d is %q, want %q", i, sp.SequenceName, records[i].ID)
		}
		if sp.SitePredictions[0].Site != i+1 {
			t.Fatalf("result %d site %d, want %d", i, sp.SitePredictions[0].Site, i+1)
		}
	}
}

func TestOnRecordsSurfacesScorerMismatch(t *testing.T) {
	s := scorer.Func(func(context.Context, encode.Batch) ([]float64, error) {
		return []float64{0.5}, nil
	})
	p := &Predictor{Alphabet: testAlphabet, Scorer: s, KmerLength: 7, AminoAcids: []byte("S"), Concurrency: 2}
	records := []sequence.Record{{ID: "a", Sequence: "SMASLEKS"}, {ID: "b", Sequence: "SS"}}
	if _, err := p.OnRecords(context.Background(), records); !errors.Is(err, scorer.ErrLengthMismatch) {
		t.Fatalf("expected scorer.ErrLengthMismatch, got %v", err)
	}
}

func TestOnRecordsEmpty(t *testing.T) {
	p := &Predictor{Alphabet: testAlphabet, Scorer: rankScorer(), Concurrency: 3}
	got, err := p.OnRecords(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.SequencePredictions) != 0 {
		t.Fatalf("expected no predictions, got %+v", got)
	}
}

func TestForKey(t *testing.T) {
	cfg := &config.Config{Scorer: "mock"}
	reg, err := model.FromConfig(cfg, model.ConfiguredScorers(cfg))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	k := model.Key{Ptm: model.OLinkedGlycosylationST, Organism: model.AllOrganism, Label: model.NoLabels}
	p, err := ForKey(reg, k, 53)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(p.AminoAcids) != "ST" || p.KmerLength != 53 {
		t.Fatalf("unexpected predictor %+v", p)
	}
	got, err := p.OnFasta(context.Background(), ">q\nMKTAYIAKQRQISFVKSHFSRQ\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := got.Sites(); n != 4 {
		t.Fatalf("expected 4 S/T sites, got %d", n)
	}
}

func TestFilterAndCSV(t *testing.T) {
	preds := SequencePredictions{SequencePredictions: []SequencePrediction{
		{SequenceName: "a", Sequence: "SAS", SitePredictions: []SitePrediction{
			{Site: 1, AminoAcid: "S", Probability: 0.5},
			{Site: 3, AminoAcid: "S", Probability: 0.91234},
		}},
		{SequenceName: "b", Sequence: "T", SitePredictions: []SitePrediction{
			{Site: 1, AminoAcid: "T", Probability: 0.2},
		}},
	}}

	filtered := preds.Filter(0.5)
	if len(filtered.SequencePredictions) != 2 || filtered.Sites() != 1 {
		t.Fatalf("unexpected filter result %+v", filtered)
	}
	if preds.Sites() != 3 {
		t.Fatalf("filter must not modify its receiver")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, preds); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "sequence name,site,amino acid,probability\n" +
		"a,1,S,0.5000\n" +
		"a,3,S,0.9123\n" +
		"b,1,T,0.2000\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}
