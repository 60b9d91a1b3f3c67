// Package effects implements the declarative rule interpreter and the
// derived-state resolver. Everything here is a pure function of the game
// document: the resolver never mutates primary state, and resolving twice in
// a row yields identical derived effects.
package effects

import (
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// EvaluateConditions reports whether every condition on the rule holds for
// the given owner. Rules without conditions always fire.
func EvaluateConditions(reg *card.Registry, st *state.GameState, owner string, rule card.EffectRule) bool {
	opponent := st.Opponent(owner)
	for _, cond := range rule.Conditions {
		if cond.OpponentLeaderName != "" {
			if leaderName(reg, st, opponent) != cond.OpponentLeaderName {
				return false
			}
		}
		if cond.OpponentFieldContainsName != "" {
			if !fieldContainsName(reg, st, opponent, cond.OpponentFieldContainsName) {
				return false
			}
		}
		if cond.AllyFieldContainsName != "" {
			if !fieldContainsName(reg, st, owner, cond.AllyFieldContainsName) {
				return false
			}
		}
		if hc := cond.OpponentHandCount; hc != nil {
			opp := st.Player(opponent)
			if opp == nil || !compareCount(len(opp.Hand), hc.Op, hc.N) {
				return false
			}
		}
	}
	return true
}

func leaderName(reg *card.Registry, st *state.GameState, playerID string) string {
	id := ""
	if z := st.ZonesOf(playerID); z != nil && z.Leader != nil {
		id = z.Leader.CardID
	}
	if id == "" {
		id = st.CurrentLeaderID(playerID)
	}
	if id == "" {
		return ""
	}
	def, err := reg.Lookup(id)
	if err != nil {
		return ""
	}
	return def.Name
}

// fieldContainsName scans a player's field zones for a face-up card with the
// given name. Face-down cards are invisible to conditional predicates.
func fieldContainsName(reg *card.Registry, st *state.GameState, playerID, name string) bool {
	z := st.ZonesOf(playerID)
	if z == nil {
		return false
	}
	for _, zone := range card.FieldZones() {
		for _, p := range z.Placements(zone) {
			if !p.FaceUp {
				continue
			}
			def, err := reg.Lookup(p.CardID)
			if err == nil && def.Name == name {
				return true
			}
		}
	}
	return false
}

func compareCount(have int, op string, n int) bool {
	switch op {
	case "lt":
		return have < n
	case "lte":
		return have <= n
	case "eq":
		return have == n
	case "gte":
		return have >= n
	case "gt":
		return have > n
	}
	return false
}
