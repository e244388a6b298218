// Package encode converts k-mer windows into the numeric forms a classifier
// consumes: alphabet indices, shape [count, L], or one-hot vectors, shape
// [count, L, |alphabet|]. Both views come from the same symbol→index map.
package encode

import (
	"errors"
	"fmt"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
)

// ErrInconsistentWindowLength means a window in a batch had the wrong length.
var ErrInconsistentWindowLength = errors.New("inconsistent window length")

// Indices maps each character of the window to its alphabet index.
func Indices(w kmer.Window, a alphabet.Alphabet) ([]int, error) {
	out := make([]int, len(w.Subsequence))
	for i := 0; i < len(w.Subsequence); i++ {
		idx, err := a.Index(w.Subsequence[i])
		if err != nil {
			return nil, fmt.Errorf("window at site %d: %w", w.Site, err)
		}
		out[i] = idx
	}
	return out, nil
}

// OneHot maps each character of the window to a vector of length a.Len()
// holding a single 1 at the character's index.
func OneHot(w kmer.Window, a alphabet.Alphabet) ([][]float32, error) {
	idx, err := Indices(w, a)
	if err != nil {
		return nil, err
	}
	return expand(idx, a.Len()), nil
}

// Decode maps indices back to characters.
func Decode(indices []int, a alphabet.Alphabet) (string, error) {
	b := make([]byte, len(indices))
	for i, idx := range indices {
		c, err := a.Symbol(idx)
		if err != nil {
			return "", err
		}
		b[i] = c
	}
	return string(b), nil
}

// Batch is an ordered set of index-encoded windows of equal length.
type Batch struct {
	// Length is the window length L.
	Length int
	// Depth is the alphabet size, the width of a one-hot vector.
	Depth int
	// Indices has one row per window, in window order.
	Indices [][]int
}

// Len returns the number of windows in the batch.
func (b Batch) Len() int { return len(b.Indices) }

// OneHot expands the batch to shape [count, L, Depth].
func (b Batch) OneHot() [][][]float32 {
	out := make([][][]float32, len(b.Indices))
	for i, row := range b.Indices {
		out[i] = expand(row, b.Depth)
	}
	return out
}

// IndexBatch encodes windows in order. Every window must have length L.
func IndexBatch(windows []kmer.Window, a alphabet.Alphabet, length int) (Batch, error) {
	b := Batch{Length: length, Depth: a.Len(), Indices: make([][]int, 0, len(windows))}
	for i, w := range windows {
		if w.Len() != length {
			return Batch{}, fmt.Errorf("%w: window %d (site %d) has length %d, want %d",
				ErrInconsistentWindowLength, i, w.Site, w.Len(), length)
		}
		idx, err := Indices(w, a)
		if err != nil {
			return Batch{}, err
		}
		b.Indices = append(b.Indices, idx)
	}
	return b, nil
}

// OneHotBatch is IndexBatch followed by one-hot expansion.
func OneHotBatch(windows []kmer.Window, a alphabet.Alphabet, length int) ([][][]float32, error) {
	b, err := IndexBatch(windows, a, length)
	if err != nil {
		return nil, err
	}
	return b.OneHot(), nil
}

func expand(indices []int, depth int) [][]float32 {
	// one backing array per window keeps the rows contiguous
	flat := make([]float32, len(indices)*depth)
	out := make([][]float32, len(indices))
	for i, idx := range indices {
		row := flat[i*depth : (i+1)*depth : (i+1)*depth]
		row[idx] = 1
		out[i] = row
	}
	return out
}
