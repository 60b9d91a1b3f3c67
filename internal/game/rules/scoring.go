package rules

import (
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// ScoringPolicy carries the battle-phase scoring knobs. The engine never
// invents these values; callers supply them from configuration.
type ScoringPolicy struct {
	// WinningPoints ends the game as soon as a player reaches it.
	WinningPoints int
	// MaxRounds ends the game after this many completed rounds.
	MaxRounds int
	// RoundPoints[i] is the award for winning round i+1; the last entry
	// repeats for any later round.
	RoundPoints []int
	// ComboBonus is added to a player's total for every three face-up
	// characters sharing a game type, unless suppressed.
	ComboBonus int
	// ReplenishHandSize is the hand size players draw back up to at the
	// end of a round.
	ReplenishHandSize int
}

// DefaultScoringPolicy mirrors the published game rules: first to 50 points
// over at most 4 rounds.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		WinningPoints:     50,
		MaxRounds:         4,
		RoundPoints:       []int{10, 10, 15, 20},
		ComboBonus:        20,
		ReplenishHandSize: 6,
	}
}

func (p ScoringPolicy) roundAward(round int) int {
	if len(p.RoundPoints) == 0 {
		return 0
	}
	idx := round - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.RoundPoints) {
		idx = len(p.RoundPoints) - 1
	}
	return p.RoundPoints[idx]
}

// battleTotal computes one player's battle total: the sum of calculated
// powers, the aggregate finalCalculation modifier, and the combo bonus when
// not suppressed.
func (pe *PhaseEngine) battleTotal(st *state.GameState, playerID string) int {
	d := st.DerivedOf(playerID)
	total := d.TotalPowerModifier
	for _, power := range d.CalculatedPowers {
		total += power
	}
	if !d.ComboBonusDisabled {
		total += pe.comboBonus(st, playerID)
	}
	if total < 0 {
		total = 0
	}
	return total
}

// comboBonus grants ComboBonus per complete set of three face-up characters
// sharing a game type across the character zones.
func (pe *PhaseEngine) comboBonus(st *state.GameState, playerID string) int {
	z := st.ZonesOf(playerID)
	if z == nil {
		return 0
	}
	counts := make(map[string]int)
	for _, zone := range card.CharacterZones() {
		for _, p := range z.Row(zone) {
			if !p.FaceUp {
				continue
			}
			def, err := pe.reg.Lookup(p.CardID)
			if err != nil || def.Kind != card.KindCharacter {
				continue
			}
			counts[def.GameType]++
		}
	}
	bonus := 0
	for _, n := range counts {
		bonus += (n / 3) * pe.scoring.ComboBonus
	}
	return bonus
}
