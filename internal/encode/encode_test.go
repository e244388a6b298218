package encode

import (
	"errors"
	"reflect"
	"testing"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
)

var alphabet24 = alphabet.MustNew("ARNDCEQGHILKMFPSTWYVXZ-U")

func TestIndicesThreeCharacters(t *testing.T) {
	w := kmer.Window{Site: 42, Center: 'R', Subsequence: "ARN"}
	got, err := Indices(w, alphabet24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("expected [0 1 2], got %v", got)
	}
}

func TestOneHotAgreesWithIndices(t *testing.T) {
	w, _ := kmer.Extract("MVPKLFTSQICLLLLLGLMGVEGSL", 7, 35)
	idx, err := Indices(w, alphabet24)
	if err != nil {
		t.Fatalf("indices: %v", err)
	}
	oh, err := OneHot(w, alphabet24)
	if err != nil {
		t.Fatalf("one-hot: %v", err)
	}
	if len(oh) != len(idx) {
		t.Fatalf("one-hot has %d rows, want %d", len(oh), len(idx))
	}
	for i, row := range oh {
		if len(row) != alphabet24.Len() {
			t.Fatalf("row %d has depth %d", i, len(row))
		}
		var sum float32
		for j, v := range row {
			sum += v
			if v == 1 && j != idx[i] {
				t.Fatalf("row %d hot at %d, want %d", i, j, idx[i])
			}
		}
		if sum != 1 {
			t.Fatalf("row %d sums to %v", i, sum)
		}
	}
}

func TestUnknownSymbol(t *testing.T) {
	w := kmer.Window{Site: 2, Center: '#', Subsequence: "A#N"}
	if _, err := Indices(w, alphabet24); !errors.Is(err, alphabet.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if _, err := IndexBatch([]kmer.Window{w}, alphabet24, 3); !errors.Is(err, alphabet.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol from batch, got %v", err)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	w, _ := kmer.Extract("SMASLEKS", 8, 7)
	idx, err := Indices(w, alphabet24)
	if err != nil {
		t.Fatalf("indices: %v", err)
	}
	got, err := Decode(idx, alphabet24)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != w.Subsequence {
		t.Fatalf("round trip %q -> %q", w.Subsequence, got)
	}
}

func TestIndexBatchShape(t *testing.T) {
	windows, _ := kmer.Scan("SMASLEKS", 'S', 7)
	b, err := IndexBatch(windows, alphabet24, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 3 || b.Length != 7 || b.Depth != 24 {
		t.Fatalf("unexpected shape: %d x %d x %d", b.Len(), b.Length, b.Depth)
	}
	for i, w := range windows {
		s, _ := Decode(b.Indices[i], alphabet24)
		if s != w.Subsequence {
			t.Fatalf("row %d decodes to %q, want %q", i, s, w.Subsequence)
		}
	}
	oh := b.OneHot()
	if len(oh) != 3 || len(oh[0]) != 7 || len(oh[0][0]) != 24 {
		t.Fatalf("unexpected one-hot shape")
	}
	direct, err := OneHotBatch(windows, alphabet24, 7)
	if err != nil {
		t.Fatalf("one-hot batch: %v", err)
	}
	if !reflect.DeepEqual(direct, oh) {
		t.Fatalf("OneHotBatch disagrees with Batch.OneHot")
	}
}

func TestIndexBatchInconsistentLength(t *testing.T) {
	a, _ := kmer.Extract("SMASLEKS", 1, 7)
	b, _ := kmer.Extract("SMASLEKS", 4, 5)
	_, err := IndexBatch([]kmer.Window{a, b}, alphabet24, 7)
	if !errors.Is(err, ErrInconsistentWindowLength) {
		t.Fatalf("expected ErrInconsistentWindowLength, got %v", err)
	}
}

func TestIndexBatchEmpty(t *testing.T) {
	b, err := IndexBatch(nil, alphabet24, 53)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 0 || len(b.OneHot()) != 0 {
		t.Fatalf("expected empty batch")
	}
}
