package state

import "fmt"

// ProjectFor returns the player-visible view of the document for viewerID:
// the full state minus the opponent's hand and deck contents (counts only)
// and minus the identities of the opponent's face-down cards.
func (s *GameState) ProjectFor(viewerID string) (*GameState, error) {
	if s.Player(viewerID) == nil {
		return nil, fmt.Errorf("unknown viewer %q", viewerID)
	}
	view, err := s.Clone()
	if err != nil {
		return nil, err
	}
	opponentID := view.Opponent(viewerID)

	opp := view.Player(opponentID)
	if opp != nil {
		opp.HandCount = len(opp.Hand)
		opp.DeckCount = len(opp.MainDeck)
		opp.Hand = nil
		opp.MainDeck = nil
	}

	if zones := view.ZonesOf(opponentID); zones != nil {
		redactRow(zones.Top)
		redactRow(zones.Left)
		redactRow(zones.Right)
		redactSlot(zones.Help)
		redactSlot(zones.SP)
	}

	// Eligible cards of a deck search are private to the selecting player.
	if ps := view.PendingSelection; ps != nil && ps.PlayerID != viewerID && ps.Kind == SelectionDeckSearch {
		ps.EligibleCards = nil
		ps.Context.SearchedCards = nil
	}

	return view, nil
}

func redactRow(row []Placement) {
	for i := range row {
		if !row[i].FaceUp {
			row[i].CardID = ""
			row[i].Hidden = true
		}
	}
}

func redactSlot(p *Placement) {
	if p != nil && !p.FaceUp {
		p.CardID = ""
		p.Hidden = true
	}
}
