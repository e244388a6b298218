package alphabet

import (
	"errors"
	"testing"
)

const alphabet24 = "ARNDCEQGHILKMFPSTWYVXZ-U"

func TestNewHasCorrectLength(t *testing.T) {
	a, err := New(alphabet24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != len(alphabet24) {
		t.Fatalf("expected length %d, got %d", len(alphabet24), a.Len())
	}
	if a.String() != alphabet24 {
		t.Fatalf("expected %q, got %q", alphabet24, a.String())
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		symbols string
	}{
		{"empty", ""},
		{"duplicate", "ARNA"},
		{"duplicate pad", "AR--"},
		{"non-ascii", "AR\xc3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.symbols); !errors.Is(err, ErrInvalidAlphabet) {
				t.Fatalf("expected ErrInvalidAlphabet, got %v", err)
			}
		})
	}
}

func TestIndexFollowsDefinitionOrder(t *testing.T) {
	a := MustNew(alphabet24)
	for i, c := range a.Symbols() {
		got, err := a.Index(c)
		if err != nil {
			t.Fatalf("Index(%q): %v", c, err)
		}
		if got != i {
			t.Fatalf("Index(%q) = %d, want %d", c, got, i)
		}
	}
}

func TestIndexUnknownSymbol(t *testing.T) {
	a := MustNew(alphabet24)
	if _, err := a.Index('#'); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if a.Contains('#') {
		t.Fatalf("'#' should not be a member")
	}
	var zero Alphabet
	if zero.Contains('A') {
		t.Fatalf("zero alphabet should contain nothing")
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	a := MustNew(alphabet24)
	for i := 0; i < a.Len(); i++ {
		c, err := a.Symbol(i)
		if err != nil {
			t.Fatalf("Symbol(%d): %v", i, err)
		}
		j, _ := a.Index(c)
		if j != i {
			t.Fatalf("round trip %d -> %q -> %d", i, c, j)
		}
	}
	if _, err := a.Symbol(a.Len()); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol past the end, got %v", err)
	}
}

func TestContainsAll(t *testing.T) {
	a := MustNew(alphabet24)
	if _, _, ok := a.ContainsAll("MKT-"); !ok {
		t.Fatalf("expected all symbols present")
	}
	c, at, ok := a.ContainsAll("AC#T")
	if ok || c != '#' || at != 2 {
		t.Fatalf("unexpected result: %q %d %v", c, at, ok)
	}
}
