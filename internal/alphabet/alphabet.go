// Package alphabet holds the ordered symbol sets that sequences and k-mers
// are validated and encoded against.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAlphabet is returned when an alphabet is empty or repeats a symbol.
	ErrInvalidAlphabet = errors.New("invalid alphabet")
	// ErrUnknownSymbol is returned when a symbol is looked up that the alphabet lacks.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Alphabet is an ordered, duplicate-free set of single-byte symbols, for
// example "ARNDCEQGHILKMFPSTWYVXZ-U". A symbol's index is its position.
type Alphabet struct {
	symbols string
	index   [256]int8
}

// New validates symbols and returns the Alphabet built from them.
func New(symbols string) (Alphabet, error) {
	var a Alphabet
	if symbols == "" {
		return a, fmt.Errorf("%w: no symbols", ErrInvalidAlphabet)
	}
	if len(symbols) > 127 {
		return a, fmt.Errorf("%w: %d symbols, at most 127 supported", ErrInvalidAlphabet, len(symbols))
	}
	for i := range a.index {
		a.index[i] = -1
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c >= 0x80 {
			return Alphabet{}, fmt.Errorf("%w: non-ASCII byte 0x%02x at %d", ErrInvalidAlphabet, c, i)
		}
		if a.index[c] >= 0 {
			return Alphabet{}, fmt.Errorf("%w: symbol %q repeats at %d", ErrInvalidAlphabet, c, i)
		}
		a.index[c] = int8(i)
	}
	a.symbols = symbols
	return a, nil
}

// MustNew is like New but panics on error. Only for package-level literals.
func MustNew(symbols string) Alphabet {
	a, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of symbols.
func (a Alphabet) Len() int { return len(a.symbols) }

// String returns the symbols in definition order.
func (a Alphabet) String() string { return a.symbols }

// Symbols returns the symbols in definition order.
func (a Alphabet) Symbols() []byte { return []byte(a.symbols) }

// Contains reports whether c is a member of the alphabet.
func (a Alphabet) Contains(c byte) bool {
	return a.symbols != "" && a.index[c] >= 0
}

// ContainsAll reports whether every byte of s is in the alphabet. When it is
// not, the first offending byte and its offset are returned.
func (a Alphabet) ContainsAll(s string) (byte, int, bool) {
	for i := 0; i < len(s); i++ {
		if !a.Contains(s[i]) {
			return s[i], i, false
		}
	}
	return 0, -1, true
}

// Index returns the encoding index of c.
func (a Alphabet) Index(c byte) (int, error) {
	if !a.Contains(c) {
		return -1, fmt.Errorf("%w: %q not in %q", ErrUnknownSymbol, c, a.symbols)
	}
	return int(a.index[c]), nil
}

// Symbol returns the symbol at index i.
func (a Alphabet) Symbol(i int) (byte, error) {
	if i < 0 || i >= len(a.symbols) {
		return 0, fmt.Errorf("%w: index %d outside [0,%d)", ErrUnknownSymbol, i, len(a.symbols))
	}
	return a.symbols[i], nil
}

// Describe renders the symbol set for error messages, e.g. "A, R, N, -".
func (a Alphabet) Describe() string {
	parts := make([]string, 0, len(a.symbols))
	for i := 0; i < len(a.symbols); i++ {
		parts = append(parts, string(a.symbols[i]))
	}
	return strings.Join(parts, ", ")
}
