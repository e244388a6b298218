package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/clair-gutierrez/sitetack/internal/alphabet"
	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/kmer"
	"github.com/clair-gutierrez/sitetack/internal/scorer"
)

var (
	// ErrUnknownKind means a PTM, organism or label name did not resolve.
	ErrUnknownKind = errors.New("unknown model kind")
	// ErrNotConfigured means no model is registered for a combination.
	ErrNotConfigured = errors.New("model not configured")
	// ErrDuplicateModel means a combination was registered twice.
	ErrDuplicateModel = errors.New("model already registered")
)

// Key identifies one trained model.
type Key struct {
	Ptm      PtmKind
	Organism OrganismKind
	Label    LabelKind
}

// String returns e.g. "PHOSPHORYLATION_ST/HUMAN/NO_LABELS".
func (k Key) String() string {
	return k.Ptm.String() + "/" + k.Organism.String() + "/" + k.Label.String()
}

// Slug returns the default model server name, e.g.
// "phosphorylation_st-human-no_labels".
func (k Key) Slug() string {
	return strings.ToLower(k.Ptm.String() + "-" + k.Organism.String() + "-" + k.Label.String())
}

// ParseKey resolves the three enum keys.
func ParseKey(ptm, organism, label string) (Key, error) {
	p, err := ParsePtmKind(ptm)
	if err != nil {
		return Key{}, err
	}
	o, err := ParseOrganismKind(organism)
	if err != nil {
		return Key{}, err
	}
	l, err := ParseLabelKind(label)
	if err != nil {
		return Key{}, err
	}
	return Key{Ptm: p, Organism: o, Label: l}, nil
}

// AllKeys returns every PTM×organism×label combination.
func AllKeys() []Key {
	var out []Key
	for _, p := range PtmKinds() {
		for _, o := range OrganismKinds() {
			for _, l := range LabelKinds() {
				out = append(out, Key{Ptm: p, Organism: o, Label: l})
			}
		}
	}
	return out
}

// Entry is what a prediction needs for one model.
type Entry struct {
	Key       Key
	Alphabet  alphabet.Alphabet
	Scorer    scorer.Scorer
	ModelName string
}

// Registry maps model keys to entries. It is filled once at startup and
// then only read.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]Entry)}
}

// Register adds e; registering the same key twice is an error.
func (r *Registry) Register(e Entry) error {
	if e.Scorer == nil {
		return fmt.Errorf("register %s: nil scorer", e.Key)
	}
	if e.Alphabet.Len() == 0 {
		return fmt.Errorf("register %s: %w", e.Key, alphabet.ErrInvalidAlphabet)
	}
	if !e.Alphabet.Contains(kmer.Pad) {
		return fmt.Errorf("register %s: %w: %q lacks the pad symbol %q", e.Key, alphabet.ErrInvalidAlphabet, e.Alphabet.String(), kmer.Pad)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.Key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, e.Key)
	}
	r.entries[e.Key] = e
	return nil
}

// Lookup returns the entry for k.
func (r *Registry) Lookup(k Key) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[k]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotConfigured, k)
	}
	return e, nil
}

// Keys returns the registered keys in enum order.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	out := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Ptm != b.Ptm {
			return a.Ptm < b.Ptm
		}
		if a.Organism != b.Organism {
			return a.Organism < b.Organism
		}
		return a.Label < b.Label
	})
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

var builtinAlphabet = alphabet.MustNew(config.DefaultAlphabet)

// ScorerFactory builds the scorer for one configured model. mc.ModelName is
// already filled in.
type ScorerFactory func(k Key, mc config.ModelConfig) (scorer.Scorer, error)

// FromConfig builds a registry from cfg.Models. An empty list registers every
// combination with the default alphabet and a slug model name.
func FromConfig(cfg *config.Config, newScorer ScorerFactory) (*Registry, error) {
	models := cfg.Models
	if len(models) == 0 {
		for _, k := range AllKeys() {
			models = append(models, config.ModelConfig{
				PTM:      k.Ptm.String(),
				Organism: k.Organism.String(),
				Label:    k.Label.String(),
			})
		}
	}
	fallback := builtinAlphabet
	if cfg.DefaultAlphabet != "" && cfg.DefaultAlphabet != config.DefaultAlphabet {
		a, err := alphabet.New(cfg.DefaultAlphabet)
		if err != nil {
			return nil, fmt.Errorf("default_alphabet: %w", err)
		}
		fallback = a
	}

	r := NewRegistry()
	for i, mc := range models {
		k, err := ParseKey(mc.PTM, mc.Organism, mc.Label)
		if err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
		a := fallback
		if mc.Alphabet != "" {
			if a, err = alphabet.New(mc.Alphabet); err != nil {
				return nil, fmt.Errorf("models[%d] %s: %w", i, k, err)
			}
		}
		if mc.ModelName == "" {
			mc.ModelName = k.Slug()
		}
		s, err := newScorer(k, mc)
		if err != nil {
			return nil, fmt.Errorf("models[%d] %s: %w", i, k, err)
		}
		if err := r.Register(Entry{Key: k, Alphabet: a, Scorer: s, ModelName: mc.ModelName}); err != nil {
			return nil, err
		}
	}
	return r, nil
}
