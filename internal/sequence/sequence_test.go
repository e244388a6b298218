package sequence

import (
	"errors"
	"reflect"
	"testing"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
)

func TestNewRejectsLowercase(t *testing.T) {
	if _, err := New("RNase_1", "MALEk", alphabet.Alphabet{}); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence, got %v", err)
	}
}

func TestNewAcceptsAlphabetSymbols(t *testing.T) {
	a := alphabet.MustNew("ARNDCEQGHILKMFPSTWYVXZ-U")
	if _, err := New("gap", "MA-LEK", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New("gap", "MA-LEK", alphabet.Alphabet{}); err == nil {
		t.Fatalf("expected error without alphabet")
	}
}

func TestSites(t *testing.T) {
	multiple, _ := New("RNase_1", "SMASLEKS", alphabet.Alphabet{})
	none, _ := New("RNase_1", "MALEK", alphabet.Alphabet{})

	if got := none.Sites('S'); len(got) != 0 {
		t.Fatalf("expected no sites, got %v", got)
	}
	if got := multiple.Sites('S'); !reflect.DeepEqual(got, []int{1, 4, 8}) {
		t.Fatalf("expected [1 4 8], got %v", got)
	}
}

func TestKmers(t *testing.T) {
	r, _ := New("RNase_1", "SMASLEKS", alphabet.Alphabet{})
	got, err := r.Kmers(7, 'S')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"---SMAS", "SMASLEK", "LEKS---"}
	if len(got) != len(want) {
		t.Fatalf("expected %d windows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Subsequence != want[i] {
			t.Fatalf("window %d = %q, want %q", i, got[i].Subsequence, want[i])
		}
	}
}

func TestKmersForKeepsSymbolOrder(t *testing.T) {
	r, _ := New("p", "TSMT", alphabet.Alphabet{})
	got, err := r.KmersFor(3, []byte("ST"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sites []int
	for _, w := range got {
		sites = append(sites, w.Site)
	}
	if !reflect.DeepEqual(sites, []int{2, 1, 4}) {
		t.Fatalf("expected S sites then T sites, got %v", sites)
	}
	if _, err := r.Kmers(4, 'S'); !errors.Is(err, kmer.ErrEvenLength) {
		t.Fatalf("expected ErrEvenLength, got %v", err)
	}
}
