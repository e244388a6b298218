// Package fasta parses and validates the multi-record FASTA text submitted
// for prediction. Parsing is lenient; Validate is the strict check applied
// before anything is scored.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/sequence"
)

// maxLineSize bounds a single FASTA line; unwrapped proteins can be long.
const maxLineSize = 16 << 20

// FastaRecord represents a single FASTA record (header and sequence).
type FastaRecord struct {
	Header   string
	Sequence string
}

// ParseFasta reads FASTA records from r. Each line is trimmed first; a line
// then beginning with '>' opens a record named by the remainder of the line,
// and every other line is appended to the open record. Validate uses the
// same header test. Lines before the first header
// are dropped. Empty input yields no records and no error.
func ParseFasta(r io.Reader) ([]FastaRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records []FastaRecord
		current FastaRecord
		open    bool
		seq     strings.Builder
	)
	flush := func() {
		if open {
			current.Sequence = seq.String()
			records = append(records, current)
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if isHeader(line) {
			flush()
			current = FastaRecord{Header: strings.TrimSpace(line[1:])}
			seq.Reset()
			open = true
			continue
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()
	return records, nil
}

// isHeader reports whether an already trimmed line opens a record.
func isHeader(line string) bool { return strings.HasPrefix(line, ">") }

// Parse parses text into sequence records. Sequences must be uppercase;
// members of extra (for example the gap symbol) are also accepted.
func Parse(text string, extra alphabet.Alphabet) ([]sequence.Record, error) {
	raw, err := ParseFasta(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	records := make([]sequence.Record, 0, len(raw))
	for _, r := range raw {
		rec, err := sequence.New(r.Header, r.Sequence, extra)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Format renders records back to FASTA, wrapping sequence lines at width
// characters (0 disables wrapping).
func Format(w io.Writer, records []sequence.Record, width int) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, ">%s\n", r.ID); err != nil {
			return err
		}
		s := r.Sequence
		wrap := width
		if wrap <= 0 {
			wrap = len(s)
		}
		for len(s) > 0 {
			n := min(wrap, len(s))
			if _, err := fmt.Fprintln(w, s[:n]); err != nil {
				return err
			}
			s = s[n:]
		}
	}
	return nil
}
