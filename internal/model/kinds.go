// Package model describes the trained-model configurations a prediction can
// be run against: the PTM kind, the organism set it was trained on, and
// whether known PTM locations were labelled in its alphabet.
package model

import (
	"fmt"
	"strings"
)

// PtmKindMetadata describes a PTM kind.
type PtmKindMetadata struct {
	Name          string   `json:"name"`
	Sites         []string `json:"sites"`
	Description   string   `json:"description"`
	DirectoryName string   `json:"directory_name"`
}

// OrganismKindMetadata describes the organisms a model was trained on.
type OrganismKindMetadata struct {
	Name          string `json:"name"`
	DirectoryName string `json:"directory_name"`
	Description   string `json:"description"`
}

// LabelKindMetadata describes how a model's alphabet treats known sites.
type LabelKindMetadata struct {
	Name          string `json:"name"`
	FilenameQuery string `json:"filename_query"`
	Description   string `json:"description"`
}

// PtmKind is a post-translational modification a model predicts.
type PtmKind int

const (
	HydroxylysineK PtmKind = iota
	HydroxyprolineP
	MethylationK
	MethylationR
	NLinkedGlycosylationN
	N6AcetylationK
	OLinkedGlycosylationST
	PhosphorylationST
	PhosphorylationY
	PyrrolidoneCarboxylicAcidQ
	SPalmitoylationC
	SumoylationK
	UbiquitinationK
)

var ptmKinds = []struct {
	key  string
	meta PtmKindMetadata
}{
	HydroxylysineK: {"HYDROXYLYSINE_K", PtmKindMetadata{
		Name:        "Hydroxylysine (K)",
		Sites:       []string{"K"},
		Description: "Hydroxylysine is a derivative of the amino acid lysine, which is used to form cross-links in collagen.",
	}},
	HydroxyprolineP: {"HYDROXYPROLINE_P", PtmKindMetadata{
		Name:        "Hydroxyproline (P)",
		Sites:       []string{"P"},
		Description: "Hydroxyproline is a derivative of the amino acid proline, which helps stabilize the triple helix of collagen.",
	}},
	MethylationK: {"METHYLATION_K", PtmKindMetadata{
		Name:        "Methylation (K)",
		Sites:       []string{"K"},
		Description: "Methylation is the addition of a methyl group to the amino acid lysine, which can affect gene expression and protein function.",
	}},
	MethylationR: {"METHYLATION_R", PtmKindMetadata{
		Name:        "Methylation (R)",
		Sites:       []string{"R"},
		Description: "Methylation is the addition of a methyl group to the amino acid arginine, which can affect gene expression and protein function.",
	}},
	NLinkedGlycosylationN: {"N_LINKED_GLYCOSYLATION_N", PtmKindMetadata{
		Name:        "N-linked glycosylation (N)",
		Sites:       []string{"N"},
		Description: "N-linked glycosylation is the attachment of sugar molecules to the amino acid asparagine, which is important for protein folding and stability.",
	}},
	N6AcetylationK: {"N6_ACETYLATION_K", PtmKindMetadata{
		Name:        "N6-acetylation (K)",
		Sites:       []string{"K"},
		Description: "N6-acetylation is the addition of an acetyl group to the amino acid lysine, which can regulate protein function and stability.",
	}},
	OLinkedGlycosylationST: {"O_LINKED_GLYCOSYLATION_ST", PtmKindMetadata{
		Name:        "O-linked glycosylation (S,T)",
		Sites:       []string{"S", "T"},
		Description: "O-linked glycosylation is the attachment of sugar molecules to the amino acids serine and threonine, which is important for protein folding and stability.",
	}},
	PhosphorylationST: {"PHOSPHORYLATION_ST", PtmKindMetadata{
		Name:        "Phosphorylation (S,T)",
		Sites:       []string{"S", "T"},
		Description: "Phosphorylation is the addition of a phosphate group to the amino acids serine and threonine, which is important for protein function and regulation.",
	}},
	PhosphorylationY: {"PHOSPHORYLATION_Y", PtmKindMetadata{
		Name:        "Phosphorylation (Y)",
		Sites:       []string{"Y"},
		Description: "Phosphorylation is the addition of a phosphate group to the amino acid tyrosine, which is important for protein function and regulation.",
	}},
	PyrrolidoneCarboxylicAcidQ: {"PYRROLIDONE_CARBOXYLIC_ACID_Q", PtmKindMetadata{
		Name:        "Pyrrolidone-carboxylic-acid (Q)",
		Sites:       []string{"Q"},
		Description: "Pyrrolidone carboxylic acid is a derivative of the amino acid glutamine, which is important for protein folding and stability.",
	}},
	SPalmitoylationC: {"S_PALMITOYLATION_C", PtmKindMetadata{
		Name:        "S-Palmitoylation (C)",
		Sites:       []string{"C"},
		Description: "S-palmitoylation is the addition of a palmitoyl group to the amino acid cysteine, which is important for protein function and stability.",
	}},
	SumoylationK: {"SUMOYLATION_K", PtmKindMetadata{
		Name:        "SUMOylation (K)",
		Sites:       []string{"K"},
		Description: "SUMOylation is the addition of a small ubiquitin-like modifier (SUMO) to the amino acid lysine, which is important for protein function and stability.",
	}},
	UbiquitinationK: {"UBIQUITINATION_K", PtmKindMetadata{
		Name:        "Ubiquitination (K)",
		Sites:       []string{"K"},
		Description: "Ubiquitination is the addition of a ubiquitin protein to the amino acid lysine, which is important for protein function and stability.",
	}},
}

// Metadata returns the kind's fixed description. The directory name
// defaults to the display name.
func (k PtmKind) Metadata() PtmKindMetadata {
	m := ptmKinds[k].meta
	if m.DirectoryName == "" {
		m.DirectoryName = m.Name
	}
	m.Sites = append([]string(nil), m.Sites...)
	return m
}

// String returns the enum key, e.g. "PHOSPHORYLATION_ST".
func (k PtmKind) String() string {
	if k < 0 || int(k) >= len(ptmKinds) {
		return fmt.Sprintf("PtmKind(%d)", int(k))
	}
	return ptmKinds[k].key
}

// AminoAcids returns the residues this PTM is predicted on, in order.
func (k PtmKind) AminoAcids() []byte {
	var out []byte
	for _, s := range ptmKinds[k].meta.Sites {
		out = append(out, s[0])
	}
	return out
}

// PtmKinds returns every PTM kind in declaration order.
func PtmKinds() []PtmKind {
	out := make([]PtmKind, len(ptmKinds))
	for i := range ptmKinds {
		out[i] = PtmKind(i)
	}
	return out
}

// ParsePtmKind resolves an enum key such as "PHOSPHORYLATION_ST".
func ParsePtmKind(s string) (PtmKind, error) {
	for i, p := range ptmKinds {
		if strings.EqualFold(p.key, strings.TrimSpace(s)) {
			return PtmKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid PTM kind %q", ErrUnknownKind, s)
}

// OrganismKind is the organism set a model was trained on.
type OrganismKind int

const (
	Human OrganismKind = iota
	AllOrganism
)

var organismKinds = []struct {
	key  string
	meta OrganismKindMetadata
}{
	Human: {"HUMAN", OrganismKindMetadata{
		Name:          "Human",
		DirectoryName: "Human",
		Description:   "Model trained on only human proteins",
	}},
	AllOrganism: {"ALL_ORGANISM", OrganismKindMetadata{
		Name:          "All Organisms",
		DirectoryName: "All organism",
		Description:   "Model trained on proteins from all organisms",
	}},
}

func (k OrganismKind) Metadata() OrganismKindMetadata { return organismKinds[k].meta }

func (k OrganismKind) String() string {
	if k < 0 || int(k) >= len(organismKinds) {
		return fmt.Sprintf("OrganismKind(%d)", int(k))
	}
	return organismKinds[k].key
}

func OrganismKinds() []OrganismKind {
	out := make([]OrganismKind, len(organismKinds))
	for i := range organismKinds {
		out[i] = OrganismKind(i)
	}
	return out
}

func ParseOrganismKind(s string) (OrganismKind, error) {
	for i, o := range organismKinds {
		if strings.EqualFold(o.key, strings.TrimSpace(s)) {
			return OrganismKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid organism kind %q", ErrUnknownKind, s)
}

// LabelKind says whether known PTM locations are encoded in the alphabet.
type LabelKind int

const (
	NoLabels LabelKind = iota
	WithLabels
)

var labelKinds = []struct {
	key  string
	meta LabelKindMetadata
}{
	NoLabels: {"NO_LABELS", LabelKindMetadata{
		Name:          "No Labels",
		FilenameQuery: "no_labels",
		Description:   "No labels does not encode known PTM locations.",
	}},
	WithLabels: {"WITH_LABELS", LabelKindMetadata{
		Name:          "With Labels",
		FilenameQuery: "with_labels",
		Description:   "With labels encodes known PTM locations as a separate amino acid.",
	}},
}

func (k LabelKind) Metadata() LabelKindMetadata { return labelKinds[k].meta }

func (k LabelKind) String() string {
	if k < 0 || int(k) >= len(labelKinds) {
		return fmt.Sprintf("LabelKind(%d)", int(k))
	}
	return labelKinds[k].key
}

func LabelKinds() []LabelKind {
	out := make([]LabelKind, len(labelKinds))
	for i := range labelKinds {
		out[i] = LabelKind(i)
	}
	return out
}

func ParseLabelKind(s string) (LabelKind, error) {
	for i, l := range labelKinds {
		if strings.EqualFold(l.key, strings.TrimSpace(s)) {
			return LabelKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid label kind %q", ErrUnknownKind, s)
}

// PtmDict maps enum keys to metadata, the shape served at /ptms.
func PtmDict() map[string]PtmKindMetadata {
	out := make(map[string]PtmKindMetadata, len(ptmKinds))
	for _, k := range PtmKinds() {
		out[k.String()] = k.Metadata()
	}
	return out
}

// OrganismDict maps enum keys to metadata, the shape served at /organisms.
func OrganismDict() map[string]OrganismKindMetadata {
	out := make(map[string]OrganismKindMetadata, len(organismKinds))
	for _, k := range OrganismKinds() {
		out[k.String()] = k.Metadata()
	}
	return out
}

// LabelDict maps enum keys to metadata, the shape served at /labels.
func LabelDict() map[string]LabelKindMetadata {
	out := make(map[string]LabelKindMetadata, len(labelKinds))
	for _, k := range LabelKinds() {
		out[k.String()] = k.Metadata()
	}
	return out
}
