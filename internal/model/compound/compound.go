package compound

import (
	"fmt"
	"strings"
)

// Attribute names one field that can be looked up for a compound.
type Attribute string

const (
	Formula Attribute = "formula"
	Weight  Attribute = "weight"
	SMILES  Attribute = "smiles"
	Name    Attribute = "name"
)

// Attributes lists every supported attribute in menu order.
func Attributes() []Attribute {
	return []Attribute{Formula, Weight, SMILES, Name}
}

// ParseAttribute converts user or config text into an Attribute.
func ParseAttribute(raw string) (Attribute, error) {
	switch attr := Attribute(strings.ToLower(strings.TrimSpace(raw))); attr {
	case Formula, Weight, SMILES, Name:
		return attr, nil
	default:
		return "", fmt.Errorf("unknown attribute %q", raw)
	}
}

// Label is the human readable attribute name used in messages.
func (a Attribute) Label() string {
	switch a {
	case Formula:
		return "molecular formula"
	case Weight:
		return "molecular weight"
	case SMILES:
		return "SMILES"
	case Name:
		return "compound name"
	default:
		return string(a)
	}
}

// Record is the transient result of one lookup. Only the field for the
// requested attribute is populated; the rest stay zero.
type Record struct {
	CID              string
	MolecularWeight  float64
	MolecularFormula string
	CanonicalSMILES  string
	IUPACName        string
	Synonyms         []string
}
