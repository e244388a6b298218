// Package sequence holds parsed protein records and the site lookups done
// on them before windows are scored.
package sequence

import (
	"errors"
	"fmt"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
)

// ErrInvalidSequence is returned by New for sequences that are not uppercase.
var ErrInvalidSequence = errors.New("invalid sequence")

// Record is a named protein sequence, e.g. ID "RNase_1" and a sequence
// starting "MALEKSLVRLLLL".
type Record struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// New validates seq and returns a Record. The sequence must consist of
// uppercase letters or members of extra (which may be the zero Alphabet).
func New(id, seq string, extra alphabet.Alphabet) (Record, error) {
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c >= 'A' && c <= 'Z' {
			continue
		}
		if extra.Contains(c) {
			continue
		}
		return Record{}, fmt.Errorf("%w: %q has %q at position %d, sequence must be capitalized", ErrInvalidSequence, id, c, i+1)
	}
	return Record{ID: id, Sequence: seq}, nil
}

// Len returns the sequence length.
func (r Record) Len() int { return len(r.Sequence) }

// Sites returns the 1-indexed positions of aminoAcid.
func (r Record) Sites(aminoAcid byte) []int {
	return kmer.Sites(r.Sequence, aminoAcid)
}

// Kmers returns the windows of the given length around every aminoAcid site.
func (r Record) Kmers(length int, aminoAcid byte) ([]kmer.Window, error) {
	windows, err := kmer.Scan(r.Sequence, aminoAcid, length)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.ID, err)
	}
	return windows, nil
}

// KmersFor concatenates Kmers for each amino acid in the order given, e.g.
// all S windows followed by all T windows.
func (r Record) KmersFor(length int, aminoAcids []byte) ([]kmer.Window, error) {
	var all []kmer.Window
	for _, aa := range aminoAcids {
		ws, err := r.Kmers(length, aa)
		if err != nil {
			return nil, err
		}
		all = append(all, ws...)
	}
	return all, nil
}
