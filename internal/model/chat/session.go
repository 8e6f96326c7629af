package chat

import (
	"time"

	"github.com/chemassist/assistant/backend/internal/model/compound"
)

// Mode is the active selector of a session.
type Mode string

const (
	ModeMenu    Mode = "menu"
	ModeFormula Mode = "formula"
	ModeWeight  Mode = "weight"
	ModeSMILES  Mode = "smiles"
	ModeName    Mode = "name"
)

// menuChoices maps the menu input to the mode it selects.
var menuChoices = map[string]Mode{
	"1": ModeFormula,
	"2": ModeWeight,
	"3": ModeSMILES,
	"4": ModeName,
}

// ModeForChoice resolves a menu input such as "2".
func ModeForChoice(choice string) (Mode, bool) {
	mode, ok := menuChoices[choice]
	return mode, ok
}

// Attribute returns the compound attribute served by an attribute mode.
func (m Mode) Attribute() (compound.Attribute, bool) {
	switch m {
	case ModeFormula:
		return compound.Formula, true
	case ModeWeight:
		return compound.Weight, true
	case ModeSMILES:
		return compound.SMILES, true
	case ModeName:
		return compound.Name, true
	default:
		return "", false
	}
}

// Session captures one user's conversation context.
type Session struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
}
