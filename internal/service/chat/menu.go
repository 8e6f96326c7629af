package chat

import (
	"github.com/chemassist/assistant/backend/internal/model/chat"
)

// MenuOption is one numbered entry of the welcome menu.
type MenuOption struct {
	Choice string    `json:"choice"`
	Label  string    `json:"label"`
	Mode   chat.Mode `json:"mode"`
}

// Menu is the welcome screen shown while a session is in menu mode.
type Menu struct {
	Intro   string       `json:"intro"`
	Options []MenuOption `json:"options"`
	Prompt  string       `json:"prompt"`
}

const (
	menuIntro          = "Welcome! I can assist you with the following functionalities:"
	menuPrompt         = "Please enter the service number (1, 2, 3, or 4):"
	invalidChoiceText  = "Invalid choice. Please enter a number between 1 and 4."
	returnedToMenuText = "Back to the main menu."
)

// DefaultMenu returns the welcome menu.
func DefaultMenu() Menu {
	return Menu{
		Intro: menuIntro,
		Options: []MenuOption{
			{Choice: "1", Label: "Find Molecular Formula by CID", Mode: chat.ModeFormula},
			{Choice: "2", Label: "Find Molecular Weight by CID", Mode: chat.ModeWeight},
			{Choice: "3", Label: "Find SMILES by CID", Mode: chat.ModeSMILES},
			{Choice: "4", Label: "Find Compound Name by CID", Mode: chat.ModeName},
		},
		Prompt: menuPrompt,
	}
}
