package rules

import (
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// Validate decides whether the proposed action is admissible against the
// current document. It inspects but never mutates state; nil means the
// action may proceed.
func Validate(reg *card.Registry, st *state.GameState, playerID string, a state.Action) *Failure {
	if st.Player(playerID) == nil {
		return failf(FailForbidden, "player %q is not part of this game", playerID)
	}
	if st.Phase == state.PhaseGameOver {
		return failf(FailWrongPhase, "game is over")
	}

	// While a selection is outstanding only the matching SelectCard is
	// accepted; the owing player cannot even Pass around it.
	if st.PendingSelection != nil {
		if a.Type != state.ActionSelectCard {
			return failf(FailNoPendingSelection, "a selection is outstanding; only the matching SELECT_CARD is accepted")
		}
		return validateSelect(st, playerID, a)
	}

	switch a.Type {
	case state.ActionSelectCard:
		return failf(FailNoPendingSelection, "no selection is outstanding")
	case state.ActionPass:
		return validatePass(st, playerID)
	case state.ActionRedraw:
		return validateRedraw(st, playerID)
	case state.ActionPlayCard, state.ActionPlayCardBack:
		return validatePlay(reg, st, playerID, a)
	}
	return failf(FailForbidden, "unknown action type %q", a.Type)
}

func validatePass(st *state.GameState, playerID string) *Failure {
	switch st.Phase {
	case state.PhaseStartRedraw:
		// Pass marks the player ready to start; it is not turn-gated.
		return nil
	case state.PhaseMain:
		if st.CurrentPlayer != playerID {
			return failf(FailNotYourTurn, "it is %s's turn", st.CurrentPlayer)
		}
		return nil
	case state.PhaseSP:
		if st.CurrentPlayer != playerID {
			return failf(FailNotYourTurn, "it is %s's turn", st.CurrentPlayer)
		}
		d := st.DerivedOf(playerID)
		if d.SpecialFlags.ForceSPPlay && st.ZonesOf(playerID).SP == nil && canComplyWithSPPlay(st, playerID) {
			return failf(FailForbidden, "an effect forces you to play an SP card this phase")
		}
		return nil
	}
	return failf(FailWrongPhase, "cannot pass during %s", st.Phase)
}

func validateRedraw(st *state.GameState, playerID string) *Failure {
	if st.Phase != state.PhaseStartRedraw {
		return failf(FailWrongPhase, "redraw is only available during %s", state.PhaseStartRedraw)
	}
	p := st.Player(playerID)
	if p.IsReady {
		return failf(FailForbidden, "player already declared ready")
	}
	if p.RedrawsRemaining <= 0 {
		return failf(FailForbidden, "no redraws remaining")
	}
	return nil
}

func validatePlay(reg *card.Registry, st *state.GameState, playerID string, a state.Action) *Failure {
	if st.CurrentPlayer != playerID {
		return failf(FailNotYourTurn, "it is %s's turn", st.CurrentPlayer)
	}

	faceDown := a.IsFaceDown()
	switch st.Phase {
	case state.PhaseMain:
		// Both orientations allowed.
	case state.PhaseSP:
		if !faceDown {
			return failf(FailWrongPhase, "only face-down plays are allowed during %s", state.PhaseSP)
		}
		if a.Zone != card.ZoneSP {
			return failf(FailInvalidZone, "only the sp zone accepts plays during %s", state.PhaseSP)
		}
	default:
		return failf(FailWrongPhase, "cannot play cards during %s", st.Phase)
	}

	p := st.Player(playerID)
	if a.HandIndex < 0 || a.HandIndex >= len(p.Hand) {
		return failf(FailInvalidHandIndex, "hand index %d out of range (hand size %d)", a.HandIndex, len(p.Hand))
	}

	switch a.Zone {
	case card.ZoneTop, card.ZoneLeft, card.ZoneRight, card.ZoneHelp, card.ZoneSP:
	default:
		return failf(FailInvalidZone, "cannot play into zone %q", a.Zone)
	}

	def, err := reg.Lookup(p.Hand[a.HandIndex])
	if err != nil {
		return failf(FailForbidden, "card %q has no definition", p.Hand[a.HandIndex])
	}

	d := st.DerivedOf(playerID)
	if d.SpecialFlags.PreventPlay[a.Zone] {
		return failf(FailForbidden, "an effect prevents plays into zone %q", a.Zone)
	}

	z := st.ZonesOf(playerID)
	switch a.Zone {
	case card.ZoneHelp:
		if z.Help != nil {
			return failf(FailZoneOccupied, "help zone is occupied")
		}
	case card.ZoneSP:
		if z.SP != nil {
			return failf(FailZoneOccupied, "sp zone is occupied")
		}
	}

	// Face-down plays bypass zone compatibility and kind checks.
	if faceDown {
		return nil
	}

	switch a.Zone {
	case card.ZoneTop, card.ZoneLeft, card.ZoneRight:
		if def.Kind != card.KindCharacter {
			return failf(FailInvalidZone, "%s cards cannot be played face-up into character zones", def.Kind)
		}
		if !d.ZoneAllows(a.Zone, def.GameType) {
			return failf(FailZoneCompatibility, "game type %q is not allowed in zone %q", def.GameType, a.Zone)
		}
	case card.ZoneHelp:
		if def.Kind != card.KindHelp {
			return failf(FailInvalidZone, "only help cards may be played face-up into the help zone")
		}
	case card.ZoneSP:
		if def.Kind != card.KindSP {
			return failf(FailInvalidZone, "only sp cards may be played face-up into the sp zone")
		}
	}
	return nil
}

func validateSelect(st *state.GameState, playerID string, a state.Action) *Failure {
	ps := st.PendingSelection
	if a.SelectionID != ps.SelectionID {
		return failf(FailInvalidSelection, "selection id %q does not match the outstanding selection", a.SelectionID)
	}
	if ps.PlayerID != playerID {
		return failf(FailNotYourTurn, "selection belongs to %s", ps.PlayerID)
	}
	if ps.Kind == state.SelectionSingle && len(a.SelectedCardIDs) != 1 {
		return failf(FailInvalidSelection, "exactly one card must be selected")
	}
	if len(a.SelectedCardIDs) != ps.SelectCount {
		return failf(FailInvalidSelection, "expected %d selected cards, got %d", ps.SelectCount, len(a.SelectedCardIDs))
	}
	eligible := make(map[string]bool, len(ps.EligibleCards))
	for _, id := range ps.EligibleCards {
		eligible[id] = true
	}
	seen := make(map[string]bool, len(a.SelectedCardIDs))
	for _, id := range a.SelectedCardIDs {
		if !eligible[id] {
			return failf(FailInvalidSelection, "card %q is not eligible for this selection", id)
		}
		if seen[id] {
			return failf(FailInvalidSelection, "card %q selected twice", id)
		}
		seen[id] = true
	}
	return nil
}

// canComplyWithSPPlay reports whether the player can satisfy a forced SP
// play. SP-phase plays are face-down and face-down plays bypass kind checks,
// so any hand card qualifies; only an empty hand cannot comply.
func canComplyWithSPPlay(st *state.GameState, playerID string) bool {
	return len(st.Player(playerID).Hand) > 0
}
