package compound

import (
	"context"
	"fmt"
	"strings"

	"github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/model/compound"
)

// Selector answers CID inputs for one attribute.
type Selector struct {
	Attribute compound.Attribute
	Title     string
	Prompt    string
	// Template receives the CID and the looked-up value, in that order.
	Template string

	service *Service
}

// selectorSpecs holds title, prompt and answer template per attribute.
var selectorSpecs = map[compound.Attribute]struct {
	title, prompt, template string
}{
	compound.Formula: {
		title:    "Find Molecular Formula",
		prompt:   "Enter the CID number to find the Molecular Formula:",
		template: "The molecular formula for CID %s is %s.",
	},
	compound.Weight: {
		title:    "Find Molecular Weight",
		prompt:   "Enter the CID number to find the Molecular Weight:",
		template: "The molecular weight for CID %s is %s g/mol.",
	},
	compound.SMILES: {
		title:    "Find SMILES",
		prompt:   "Enter the CID number to find the SMILES:",
		template: "The SMILES for CID %s is %s.",
	},
	compound.Name: {
		title:    "Find Compound Name",
		prompt:   "Enter the CID number to find the Compound Name:",
		template: "The compound name for CID %s is %s.",
	},
}

// NewSelector builds the selector for attr.
func NewSelector(service *Service, attr compound.Attribute) (*Selector, error) {
	spec, ok := selectorSpecs[attr]
	if !ok {
		return nil, fmt.Errorf("no selector for attribute %q", attr)
	}
	return &Selector{
		Attribute: attr,
		Title:     spec.title,
		Prompt:    spec.prompt,
		Template:  spec.template,
		service:   service,
	}, nil
}

// NewSelectors builds one selector per supported attribute.
func NewSelectors(service *Service) map[compound.Attribute]*Selector {
	selectors := make(map[compound.Attribute]*Selector, len(selectorSpecs))
	for _, attr := range compound.Attributes() {
		selector, err := NewSelector(service, attr)
		if err != nil {
			continue
		}
		selectors[attr] = selector
	}
	return selectors
}

// Format renders the answer sentence.
func (s *Selector) Format(cid, value string) string {
	return fmt.Sprintf(s.Template, cid, value)
}

// HandleUserInput looks up cid and returns the user entry, followed by the
// assistant entry when the lookup succeeds. On failure only the user entry
// is returned, together with the lookup error for inline display.
func (s *Selector) HandleUserInput(ctx context.Context, cid string) ([]chat.Message, error) {
	cid = strings.TrimSpace(cid)
	entries := []chat.Message{chat.UserMessage(cid)}

	value, err := s.service.FetchAttribute(ctx, cid, s.Attribute)
	if err != nil {
		return entries, err
	}

	return append(entries, chat.AssistantMessage(s.Format(cid, value))), nil
}

// PromptText is the input prompt shown while this selector is active.
func (s *Selector) PromptText() string {
	return s.Prompt
}
