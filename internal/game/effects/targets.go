package effects

import (
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// TargetRef identifies one card a rule reaches, with enough context to apply
// or tie-break.
type TargetRef struct {
	Owner    string
	Zone     card.Zone
	CardID   string
	Sequence int
}

// SelectTargets enumerates the face-up cards the rule's target clause
// reaches, in board scan order: the rule owner's half first (opponent's half
// first when the clause owner is "opponent"), zones top, left, right, help,
// sp, insertion order within a zone. The second return reports whether the
// clause calls for a player selection rather than automatic application.
func SelectTargets(reg *card.Registry, st *state.GameState, owner string, rule card.EffectRule) ([]TargetRef, bool) {
	var owners []string
	switch rule.Target.Owner {
	case card.OwnerSelf:
		owners = []string{owner}
	case card.OwnerOpponent:
		owners = []string{st.Opponent(owner)}
	case card.OwnerBoth:
		owners = []string{owner, st.Opponent(owner)}
	default:
		return nil, false
	}

	zones := rule.Target.Zones
	if len(zones) == 0 {
		zones = card.FieldZones()
	}

	var refs []TargetRef
	for _, targetOwner := range owners {
		z := st.ZonesOf(targetOwner)
		if z == nil {
			continue
		}
		for _, zone := range zones {
			for _, p := range z.Placements(zone) {
				if !p.FaceUp {
					continue
				}
				def, err := reg.Lookup(p.CardID)
				if err != nil || !def.Matches(rule.Target.Filter) {
					continue
				}
				refs = append(refs, TargetRef{
					Owner:    targetOwner,
					Zone:     zone,
					CardID:   p.CardID,
					Sequence: p.Sequence,
				})
			}
		}
	}

	needsSelection := rule.Target.RequiresSelection || rule.Target.TargetCount == 1
	return refs, needsSelection
}

// matchesTargetClause reports whether one specific placement falls under the
// rule's target clause. Used for silenceOnSummon checks against a card that
// just entered.
func matchesTargetClause(reg *card.Registry, st *state.GameState, ruleOwner string, rule card.EffectRule, cardOwner string, zone card.Zone, cardID string) bool {
	switch rule.Target.Owner {
	case card.OwnerSelf:
		if cardOwner != ruleOwner {
			return false
		}
	case card.OwnerOpponent:
		if cardOwner != st.Opponent(ruleOwner) {
			return false
		}
	case card.OwnerBoth:
	default:
		return false
	}
	if len(rule.Target.Zones) > 0 {
		found := false
		for _, z := range rule.Target.Zones {
			if z == zone {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	def, err := reg.Lookup(cardID)
	return err == nil && def.Matches(rule.Target.Filter)
}
