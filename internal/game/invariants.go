package game

import (
	"fmt"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// checkInvariants audits the document before it is committed. A violation
// means the action pipeline has a bug; the caller aborts without saving so
// the last good state stands.
func checkInvariants(reg *card.Registry, st *state.GameState) error {
	if err := checkCardConservation(st); err != nil {
		return err
	}
	if ps := st.PendingSelection; ps != nil && ps.PlayerID != st.CurrentPlayer {
		return fmt.Errorf("pending selection belongs to %q but current player is %q", ps.PlayerID, st.CurrentPlayer)
	}
	if err := checkPowerCoverage(st); err != nil {
		return err
	}
	if st.Journal.NextID <= 0 {
		return fmt.Errorf("journal next id %d is not positive", st.Journal.NextID)
	}
	for i := 1; i < len(st.Journal.Events); i++ {
		if st.Journal.Events[i].ID <= st.Journal.Events[i-1].ID {
			return fmt.Errorf("journal ids not strictly increasing at index %d", i)
		}
	}
	for i := 1; i < len(st.PlaySequence.Plays); i++ {
		if st.PlaySequence.Plays[i].SequenceID <= st.PlaySequence.Plays[i-1].SequenceID {
			return fmt.Errorf("play sequence ids not strictly increasing at index %d", i)
		}
	}
	return nil
}

// checkCardConservation verifies no card id appears in two places within one
// player's collections. Conservation is scoped per owner: both players
// bringing copies of the same card is normal deck construction.
func checkCardConservation(st *state.GameState) error {
	for _, pid := range st.PlayerOrder {
		seen := make(map[string]string)
		note := func(id, where string) error {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("card %q present in both %s and %s", id, prev, where)
			}
			seen[id] = where
			return nil
		}

		p := st.Player(pid)
		if p == nil {
			continue
		}
		for _, id := range p.Hand {
			if err := note(id, pid+"/hand"); err != nil {
				return err
			}
		}
		for _, id := range p.MainDeck {
			if err := note(id, pid+"/deck"); err != nil {
				return err
			}
		}
		z := st.ZonesOf(pid)
		if z != nil {
			for _, zone := range card.FieldZones() {
				for _, pl := range z.Placements(zone) {
					if err := note(pl.CardID, pid+"/"+string(zone)); err != nil {
						return err
					}
				}
			}
			if z.Leader != nil {
				if err := note(z.Leader.CardID, pid+"/leader"); err != nil {
					return err
				}
			}
		}
		if ps := st.PendingSelection; ps != nil && ps.PlayerID == pid {
			for _, id := range ps.Context.SearchedCards {
				if err := note(id, pid+"/searched"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkPowerCoverage verifies every face-up character on the field has an
// entry in its owner's calculated powers.
func checkPowerCoverage(st *state.GameState) error {
	for _, pid := range st.PlayerOrder {
		z := st.ZonesOf(pid)
		d := st.Derived[pid]
		if z == nil || d == nil {
			continue
		}
		for _, zone := range card.CharacterZones() {
			for _, pl := range z.Row(zone) {
				if !pl.FaceUp {
					continue
				}
				if _, ok := d.CalculatedPowers[pl.CardID]; !ok {
					return fmt.Errorf("face-up card %q in %s/%s has no calculated power", pl.CardID, pid, zone)
				}
			}
		}
	}
	return nil
}
