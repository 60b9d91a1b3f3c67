package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/effects"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// enteredCard identifies the card that entered the field face-up during the
// current action; only its onPlay rules may fire.
type enteredCard struct {
	cardID string
	owner  string
}

// applyAction performs the primary-state mutation for a validated action.
func (e *Engine) applyAction(st *state.GameState, playerID string, a state.Action) (*enteredCard, error) {
	switch a.Type {
	case state.ActionPass:
		st.PlaySequence.Record(state.PlayRecord{PlayerID: playerID, Action: state.PlayActionPass})
		st.Player(playerID).IsReady = true
		return nil, nil

	case state.ActionRedraw:
		return nil, e.applyRedraw(st, playerID)

	case state.ActionPlayCard, state.ActionPlayCardBack:
		return e.applyPlay(st, playerID, a)

	case state.ActionSelectCard:
		return nil, e.applySelection(st, playerID, a)
	}
	return nil, fmt.Errorf("unhandled action type %q", a.Type)
}

func (e *Engine) applyPlay(st *state.GameState, playerID string, a state.Action) (*enteredCard, error) {
	p := st.Player(playerID)
	cardID := p.Hand[a.HandIndex]
	p.Hand = append(p.Hand[:a.HandIndex], p.Hand[a.HandIndex+1:]...)

	faceDown := a.IsFaceDown()
	act := state.PlayActionCard
	if faceDown {
		act = state.PlayActionCardBack
	}
	seq := st.PlaySequence.Record(state.PlayRecord{
		PlayerID: playerID,
		CardID:   cardID,
		Zone:     a.Zone,
		Action:   act,
		FaceDown: faceDown,
	})

	placement := state.Placement{CardID: cardID, FaceUp: !faceDown, Sequence: seq}
	z := st.ZonesOf(playerID)
	switch a.Zone {
	case card.ZoneTop, card.ZoneLeft, card.ZoneRight:
		z.SetRow(a.Zone, append(z.Row(a.Zone), placement))
	case card.ZoneHelp, card.ZoneSP:
		z.SetSlot(a.Zone, &placement)
	}

	payload := map[string]any{
		"playerId": playerID,
		"zone":     string(a.Zone),
		"faceDown": faceDown,
	}
	if !faceDown {
		payload["cardId"] = cardID
	}
	st.Journal.Append(journal.EventCardPlayed, payload)

	if faceDown {
		// Face-down cards trigger nothing.
		return nil, nil
	}
	return &enteredCard{cardID: cardID, owner: playerID}, nil
}

// applyRedraw shuffles the hand back into the deck and draws the same
// number of cards, spending one redraw.
func (e *Engine) applyRedraw(st *state.GameState, playerID string) error {
	p := st.Player(playerID)
	n := len(p.Hand)
	p.MainDeck = append(p.MainDeck, p.Hand...)
	p.Hand = nil

	rng := rand.New(rand.NewSource(st.NextSeed()))
	rng.Shuffle(len(p.MainDeck), func(i, j int) {
		p.MainDeck[i], p.MainDeck[j] = p.MainDeck[j], p.MainDeck[i]
	})
	if n > len(p.MainDeck) {
		n = len(p.MainDeck)
	}
	p.Hand = append(p.Hand, p.MainDeck[:n]...)
	p.MainDeck = p.MainDeck[n:]
	p.RedrawsRemaining--

	st.Journal.Append(journal.EventHandRedrawn, map[string]any{
		"playerId": playerID,
		"handSize": len(p.Hand),
	})
	return nil
}

// suspend records the pending selection on the document. For deck searches
// the searched cards are lifted off the top of the deck into the selection
// context; they live there until the selection resolves.
func (e *Engine) suspend(st *state.GameState, req *effects.SelectionRequest) {
	if req.Kind == state.SelectionDeckSearch {
		p := st.Player(req.PlayerID)
		p.MainDeck = p.MainDeck[len(req.Context.SearchedCards):]
	}
	st.PendingSelection = &state.PendingSelection{
		SelectionID:   uuid.NewString(),
		PlayerID:      req.PlayerID,
		Kind:          req.Kind,
		SelectCount:   req.SelectCount,
		EligibleCards: req.EligibleCards,
		Context:       req.Context,
	}
	st.Journal.Append(journal.EventPendingSelection, map[string]any{
		"selectionId":   st.PendingSelection.SelectionID,
		"playerId":      req.PlayerID,
		"kind":          string(req.Kind),
		"selectCount":   req.SelectCount,
		"eligibleCards": req.EligibleCards,
	})
}

// applySelection resumes a suspended effect with the player's choice.
func (e *Engine) applySelection(st *state.GameState, playerID string, a state.Action) error {
	ps := st.PendingSelection
	st.PendingSelection = nil

	switch ps.Kind {
	case state.SelectionDeckSearch:
		e.applyDeckSearchSelection(st, ps, a.SelectedCardIDs)
	case state.SelectionFieldTarget, state.SelectionSingle:
		e.applyTargetSelection(st, ps, a.SelectedCardIDs)
	default:
		return fmt.Errorf("unhandled selection kind %q", ps.Kind)
	}

	st.Journal.Append(journal.EventSelectionCompleted, map[string]any{
		"selectionId": ps.SelectionID,
		"playerId":    playerID,
		"selected":    a.SelectedCardIDs,
	})
	return nil
}

// applyDeckSearchSelection moves the chosen cards to the effect's
// destination, falling back to the hand when the destination slot is
// occupied, and returns the unselected searched cards to the bottom of the
// deck in their original relative order.
func (e *Engine) applyDeckSearchSelection(st *state.GameState, ps *state.PendingSelection, selected []string) {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	p := st.Player(ps.PlayerID)
	z := st.ZonesOf(ps.PlayerID)

	for _, id := range selected {
		dest := ps.Context.Destination
		switch dest {
		case card.ZoneSP:
			if z.SP != nil {
				dest = card.ZoneHand
			}
		case card.ZoneHelp:
			if z.Help != nil {
				dest = card.ZoneHand
			}
		case card.ZoneHand, "":
			dest = card.ZoneHand
		}

		switch dest {
		case card.ZoneSP:
			seq := st.PlaySequence.Record(state.PlayRecord{
				PlayerID: ps.PlayerID, CardID: id, Zone: card.ZoneSP,
				Action: state.PlayActionCardBack, FaceDown: true,
			})
			z.SP = &state.Placement{CardID: id, FaceUp: false, Sequence: seq}
			st.Journal.Append(journal.EventCardMovedToSPZone, map[string]any{
				"playerId": ps.PlayerID, "cardId": id,
			})
		case card.ZoneHelp:
			seq := st.PlaySequence.Record(state.PlayRecord{
				PlayerID: ps.PlayerID, CardID: id, Zone: card.ZoneHelp,
				Action: state.PlayActionCard,
			})
			z.Help = &state.Placement{CardID: id, FaceUp: true, Sequence: seq}
			st.Journal.Append(journal.EventCardMovedToHelpZone, map[string]any{
				"playerId": ps.PlayerID, "cardId": id,
			})
		default:
			p.Hand = append(p.Hand, id)
			st.Journal.Append(journal.EventCardMovedToHand, map[string]any{
				"playerId": ps.PlayerID, "cardId": id,
			})
		}
	}

	for _, id := range ps.Context.SearchedCards {
		if !chosen[id] {
			p.MainDeck = append(p.MainDeck, id)
		}
	}
}

// applyTargetSelection records the chosen targets as applied modifiers.
// Modifiers are primary state: the resolver replays them on every pass and
// drops them once their source card is neutralized or leaves the field.
func (e *Engine) applyTargetSelection(st *state.GameState, ps *state.PendingSelection, selected []string) {
	for _, id := range selected {
		owner, ok := findFieldOwner(st, id)
		if !ok {
			continue // target left the field while the selection was open
		}
		st.PlaySequence.GlobalSequence++
		st.AppliedModifiers = append(st.AppliedModifiers, state.AppliedModifier{
			SourceCardID: ps.Context.SourceCardID,
			TargetCardID: id,
			TargetOwner:  owner,
			Effect:       ps.Context.Effect,
			Amount:       ps.Context.Amount,
			Sequence:     st.PlaySequence.GlobalSequence,
		})
	}
}

// applyImmediates executes the primary-state mutations requested by
// triggered rules: draws, random discards, and automatic targeted effects.
func (e *Engine) applyImmediates(st *state.GameState, ims []effects.Immediate) error {
	for _, im := range ims {
		switch im.Effect {
		case card.EffectDrawCards:
			p := st.Player(im.TargetOwner)
			if p == nil {
				continue
			}
			drawn := 0
			for drawn < im.Amount && len(p.MainDeck) > 0 {
				p.Hand = append(p.Hand, p.MainDeck[0])
				p.MainDeck = p.MainDeck[1:]
				drawn++
			}
			if drawn > 0 {
				st.Journal.Append(journal.EventCardMovedToHand, map[string]any{
					"playerId": im.TargetOwner,
					"count":    drawn,
				})
			}

		case card.EffectRandomDiscard:
			p := st.Player(im.TargetOwner)
			if p == nil || len(p.Hand) == 0 {
				continue
			}
			rng := rand.New(rand.NewSource(st.NextSeed()))
			var discarded []string
			for n := 0; n < im.Amount && len(p.Hand) > 0; n++ {
				idx := rng.Intn(len(p.Hand))
				discarded = append(discarded, p.Hand[idx])
				p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
			}
			st.Journal.Append(journal.EventCardsDiscarded, map[string]any{
				"playerId": im.TargetOwner,
				"cardIds":  discarded,
			})

		case card.EffectPowerBoost, card.EffectSetPower, card.EffectNeutralizeEffect:
			for _, t := range im.Targets {
				st.PlaySequence.GlobalSequence++
				st.AppliedModifiers = append(st.AppliedModifiers, state.AppliedModifier{
					SourceCardID: im.SourceCardID,
					TargetCardID: t.CardID,
					TargetOwner:  t.Owner,
					Effect:       im.Effect,
					Amount:       im.Amount,
					Sequence:     st.PlaySequence.GlobalSequence,
				})
			}

		default:
			return fmt.Errorf("unhandled immediate effect %q", im.Effect)
		}
	}
	return nil
}

// findFieldOwner locates which player's field holds the given card id.
func findFieldOwner(st *state.GameState, cardID string) (string, bool) {
	for _, pid := range st.PlayerOrder {
		z := st.ZonesOf(pid)
		if z == nil {
			continue
		}
		for _, zone := range card.FieldZones() {
			for _, p := range z.Placements(zone) {
				if p.CardID == cardID {
					return pid, true
				}
			}
		}
	}
	return "", false
}
