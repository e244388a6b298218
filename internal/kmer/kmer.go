// Package kmer extracts fixed-width, odd-length context windows centred on
// residues of a protein sequence. Sites are 1-indexed; positions that fall
// before the start or past the end of the sequence are filled with Pad.
package kmer

import (
	"errors"
	"fmt"
	"strings"
)

// Pad fills window positions outside the sequence.
const Pad = '-'

var (
	// ErrEvenLength is returned for a window length that is not a positive odd number.
	ErrEvenLength = errors.New("window length must be odd")
	// ErrSiteOutOfRange is returned when a site is not in [1, len(seq)].
	ErrSiteOutOfRange = errors.New("site outside sequence")
	// ErrInvariantViolation means an extracted window is not centred on its
	// site; it indicates a bug, not bad input.
	ErrInvariantViolation = errors.New("window invariant violated")
)

// Window is a padded subsequence of odd length centred on Site.
type Window struct {
	// Site is the 1-indexed position of the centred residue.
	Site int
	// Center is the residue at Site, e.g. 'S'.
	Center byte
	// Subsequence has length Len() and Center at its middle index.
	Subsequence string

	// positions that fell before the start and past the end of the sequence
	left, right int
}

// Len returns the window length.
func (w Window) Len() int { return len(w.Subsequence) }

// String returns the subsequence.
func (w Window) String() string { return w.Subsequence }

// Padding returns how many positions on each side lie outside the
// sequence. Pad symbols that occur in the sequence itself are not counted.
func (w Window) Padding() (left, right int) { return w.left, w.right }

// Extract returns the window of the given length centred on site.
//
// With half = (length-1)/2 the window covers [site-half, site+half]; every
// covered position < 1 or > len(seq) becomes Pad.
func Extract(seq string, site, length int) (Window, error) {
	if length < 1 || length%2 != 1 {
		return Window{}, fmt.Errorf("%w: got %d", ErrEvenLength, length)
	}
	if site < 1 || site > len(seq) {
		return Window{}, fmt.Errorf("%w: site %d, length %d", ErrSiteOutOfRange, site, len(seq))
	}
	half := (length - 1) / 2

	var b strings.Builder
	b.Grow(length)
	for pos := site - half; pos <= site+half; pos++ {
		if pos < 1 || pos > len(seq) {
			b.WriteByte(Pad)
			continue
		}
		b.WriteByte(seq[pos-1])
	}
	sub := b.String()

	if len(sub) != length || sub[half] != seq[site-1] {
		return Window{}, fmt.Errorf("%w: site %d centre %q, window %q", ErrInvariantViolation, site, seq[site-1], sub)
	}
	return Window{
		Site:        site,
		Center:      seq[site-1],
		Subsequence: sub,
		left:        max(0, half-(site-1)),
		right:       max(0, half-(len(seq)-site)),
	}, nil
}

// Sites returns the 1-indexed positions of symbol in seq, left to right.
func Sites(seq string, symbol byte) []int {
	var sites []int
	for i := 0; i < len(seq); i++ {
		if seq[i] == symbol {
			sites = append(sites, i+1)
		}
	}
	return sites
}

// Scan returns one window per occurrence of symbol in seq, in site order.
func Scan(seq string, symbol byte, length int) ([]Window, error) {
	sites := Sites(seq, symbol)
	windows := make([]Window, 0, len(sites))
	for _, site := range sites {
		w, err := Extract(seq, site, length)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}
