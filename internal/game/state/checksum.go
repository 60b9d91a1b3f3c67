package state

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Checksum computes a deterministic digest of the game document. Two states
// that would behave identically under the engine hash identically: random
// tokens (updateUuid, selection ids) are excluded, maps are emitted in
// sorted key order.
//
// Used by tests and the replay recorder to detect divergence.
func (s *GameState) Checksum() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%d|%s|%s|%t\n",
		s.GameID, s.Phase, s.Round, s.CurrentTurn, s.FirstPlayer, s.CurrentPlayer, s.GameStarted)

	ids := append([]string(nil), s.PlayerOrder...)
	sort.Strings(ids)
	for _, id := range ids {
		p := s.Players[id]
		if p == nil {
			continue
		}
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%t|%d|%d\n", id, p.PlayerPoint, p.IsReady, p.CurrentLeaderIdx, p.RedrawsRemaining)
		for _, c := range p.Hand {
			fmt.Fprintf(&buf, "  HAND:%s\n", c)
		}
		for _, c := range p.MainDeck {
			fmt.Fprintf(&buf, "  DECK:%s\n", c)
		}
		for _, c := range p.LeaderSequence {
			fmt.Fprintf(&buf, "  LEADER_SEQ:%s\n", c)
		}

		if z := s.Zones[id]; z != nil {
			writePlacement(&buf, "ZONE_LEADER", z.Leader)
			writeRow(&buf, "ZONE_TOP", z.Top)
			writeRow(&buf, "ZONE_LEFT", z.Left)
			writeRow(&buf, "ZONE_RIGHT", z.Right)
			writePlacement(&buf, "ZONE_HELP", z.Help)
			writePlacement(&buf, "ZONE_SP", z.SP)
		}

		if d := s.Derived[id]; d != nil {
			cardIDs := make([]string, 0, len(d.CalculatedPowers))
			for cid := range d.CalculatedPowers {
				cardIDs = append(cardIDs, cid)
			}
			sort.Strings(cardIDs)
			for _, cid := range cardIDs {
				fmt.Fprintf(&buf, "  POWER:%s=%d\n", cid, d.CalculatedPowers[cid])
			}
			disabled := make([]string, 0, len(d.DisabledCards))
			for cid, on := range d.DisabledCards {
				if on {
					disabled = append(disabled, cid)
				}
			}
			sort.Strings(disabled)
			for _, cid := range disabled {
				fmt.Fprintf(&buf, "  DISABLED:%s\n", cid)
			}
			fmt.Fprintf(&buf, "  COMBO_OFF:%t|VPM:%d|TPM:%d\n", d.ComboBonusDisabled, d.VictoryPointModifiers, d.TotalPowerModifier)
		}
	}

	for _, rec := range s.PlaySequence.Plays {
		fmt.Fprintf(&buf, "PLAY:%d|%s|%s|%s|%s|%t\n", rec.SequenceID, rec.PlayerID, rec.CardID, rec.Zone, rec.Action, rec.FaceDown)
	}
	for _, m := range s.AppliedModifiers {
		fmt.Fprintf(&buf, "MOD:%d|%s|%s|%s|%d\n", m.Sequence, m.SourceCardID, m.TargetCardID, m.Effect, m.Amount)
	}
	if ps := s.PendingSelection; ps != nil {
		fmt.Fprintf(&buf, "PENDING:%s|%s|%d|%s\n", ps.PlayerID, ps.Kind, ps.SelectCount, ps.Context.SourceCardID)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeRow(buf *bytes.Buffer, label string, row []Placement) {
	for _, p := range row {
		fmt.Fprintf(buf, "  %s:%s|%t|%d\n", label, p.CardID, p.FaceUp, p.Sequence)
	}
}

func writePlacement(buf *bytes.Buffer, label string, p *Placement) {
	if p != nil {
		fmt.Fprintf(buf, "  %s:%s|%t|%d\n", label, p.CardID, p.FaceUp, p.Sequence)
	}
}
