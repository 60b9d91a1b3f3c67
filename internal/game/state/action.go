package state

import "github.com/revrebgame/revreb-server-go/internal/game/card"

// ActionType names a player-submitted action.
type ActionType string

const (
	ActionPlayCard     ActionType = "PLAY_CARD"
	ActionPlayCardBack ActionType = "PLAY_CARD_BACK"
	ActionPass         ActionType = "PASS"
	ActionSelectCard   ActionType = "SELECT_CARD"
	ActionRedraw       ActionType = "REDRAW"
)

// Action is one proposed player action as received from the transport. The
// engine validates it before any mutation.
type Action struct {
	Type ActionType `json:"type"`

	// PlayCard / PlayCardBack fields.
	HandIndex int       `json:"handIndex,omitempty"`
	Zone      card.Zone `json:"zone,omitempty"`
	FaceDown  bool      `json:"faceDown,omitempty"`

	// SelectCard fields.
	SelectionID     string   `json:"selectionId,omitempty"`
	SelectedCardIDs []string `json:"selectedCardIds,omitempty"`
}

// IsFaceDown reports whether the action places a card face-down, either via
// the explicit flag or the PLAY_CARD_BACK form.
func (a Action) IsFaceDown() bool {
	return a.FaceDown || a.Type == ActionPlayCardBack
}
