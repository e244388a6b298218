package fasta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
)

// Kind classifies why a FASTA text failed validation.
type Kind int

const (
	EmptyInput Kind = iota + 1
	MissingHeader
	DuplicateIdentifier
	InvalidSymbol
	NoSequenceData
)

func (k Kind) String() string {
	switch k {
	case EmptyInput:
		return "EmptyInput"
	case MissingHeader:
		return "MissingHeader"
	case DuplicateIdentifier:
		return "DuplicateIdentifier"
	case InvalidSymbol:
		return "InvalidSymbol"
	case NoSequenceData:
		return "NoSequenceData"
	default:
		return "Unknown"
	}
}

// Sentinels matched by ValidationError.Is.
var (
	ErrEmptyInput          = errors.New("empty input")
	ErrMissingHeader       = errors.New("missing header")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrNoSequenceData      = errors.New("no sequence data")
)

var kindErrors = map[Kind]error{
	EmptyInput:          ErrEmptyInput,
	MissingHeader:       ErrMissingHeader,
	DuplicateIdentifier: ErrDuplicateIdentifier,
	InvalidSymbol:       ErrInvalidSymbol,
	NoSequenceData:      ErrNoSequenceData,
}

// ValidationError is the first violation Validate found.
type ValidationError struct {
	Kind Kind
	// Reason is shown to the submitter as is.
	Reason string
	// Value is the offending identifier or symbol, when there is one.
	Value string
	// Line is the 1-indexed line of the violation, 0 when not line bound.
	Line int
}

func (e *ValidationError) Error() string { return e.Reason }

// Is lets errors.Is match the per-kind sentinels.
func (e *ValidationError) Is(target error) bool {
	return kindErrors[e.Kind] == target
}

// Validate checks that text is a well-formed FASTA document whose sequence
// characters all belong to a. It stops at the first violation.
func Validate(text string, a alphabet.Alphabet) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Kind: EmptyInput, Reason: "FASTA text is empty"}
	}

	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{})
	headerSeen := false
	sequenceSeen := false
	current := ""

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !headerSeen && !isHeader(line) {
			return &ValidationError{
				Kind:   MissingHeader,
				Reason: "FASTA text must start with a header line beginning with '>'",
				Line:   i + 1,
			}
		}
		if isHeader(line) {
			headerSeen = true
			current = strings.TrimSpace(line[1:])
			if _, dup := seen[current]; dup {
				return &ValidationError{
					Kind:   DuplicateIdentifier,
					Reason: fmt.Sprintf("duplicate sequence name %q on line %d; sequence names must be unique", current, i+1),
					Value:  current,
					Line:   i + 1,
				}
			}
			seen[current] = struct{}{}
			continue
		}
		if c, at, ok := a.ContainsAll(line); !ok {
			return &ValidationError{
				Kind: InvalidSymbol,
				Reason: fmt.Sprintf("invalid character %q in sequence %q (line %d, column %d); allowed characters are: %s",
					c, current, i+1, at+1, a.Describe()),
				Value: string(c),
				Line:  i + 1,
			}
		}
		sequenceSeen = true
	}

	if !sequenceSeen {
		return &ValidationError{Kind: NoSequenceData, Reason: "FASTA text has a header but no sequence lines"}
	}
	return nil
}

// AsValidationError unwraps err to a *ValidationError if it holds one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
