// Package card holds the static card model: immutable card definitions and
// the declarative effect rules attached to them. Definitions are loaded once
// at startup and shared read-only across every game.
package card

// Zone names a location a card can occupy on the board or in a player's
// private collection.
type Zone string

const (
	ZoneTop    Zone = "top"
	ZoneLeft   Zone = "left"
	ZoneRight  Zone = "right"
	ZoneHelp   Zone = "help"
	ZoneSP     Zone = "sp"
	ZoneHand   Zone = "hand"
	ZoneLeader Zone = "leader"
)

// CharacterZones returns the three character zones in board scan order.
func CharacterZones() []Zone {
	return []Zone{ZoneTop, ZoneLeft, ZoneRight}
}

// FieldZones returns every on-board zone in board scan order: character
// zones first, then help, then sp. This order is load-bearing: target
// enumeration and effect application both follow it.
func FieldZones() []Zone {
	return []Zone{ZoneTop, ZoneLeft, ZoneRight, ZoneHelp, ZoneSP}
}

// Kind classifies a card.
type Kind string

const (
	KindCharacter Kind = "character"
	KindHelp      Kind = "help"
	KindSP        Kind = "sp"
	KindLeader    Kind = "leader"
)

// Trigger determines when an effect rule is considered for application.
type Trigger string

const (
	// TriggerAlways applies continuously while the source is face-up on the
	// field.
	TriggerAlways Trigger = "always"
	// TriggerOnPlay fires once, when the source enters the field.
	TriggerOnPlay Trigger = "onPlay"
	// TriggerFinalCalculation applies only during battle resolution.
	TriggerFinalCalculation Trigger = "finalCalculation"
	// TriggerSPPhase applies only while the game is in the SP phase.
	TriggerSPPhase Trigger = "spPhase"
)

// EffectKind names the behaviour of an effect rule.
type EffectKind string

const (
	EffectPowerBoost           EffectKind = "powerBoost"
	EffectSetPower             EffectKind = "setPower"
	EffectNeutralizeEffect     EffectKind = "neutralizeEffect"
	EffectDisableComboBonus    EffectKind = "disableComboBonus"
	EffectZonePlacementFreedom EffectKind = "zonePlacementFreedom"
	EffectSilenceOnSummon      EffectKind = "silenceOnSummon"
	EffectPreventPlay          EffectKind = "preventPlay"
	EffectForceSPPlay          EffectKind = "forceSPPlay"
	EffectRandomDiscard        EffectKind = "randomDiscard"
	EffectDrawCards            EffectKind = "drawCards"
	EffectSearchCard           EffectKind = "searchCard"
	EffectTotalPowerNerf       EffectKind = "totalPowerNerf"
)

// TargetOwner selects whose board half a rule may reach.
type TargetOwner string

const (
	OwnerSelf     TargetOwner = "self"
	OwnerOpponent TargetOwner = "opponent"
	OwnerBoth     TargetOwner = "both"
)

// CountCondition compares the opponent's hand size against N using Op, one
// of "lt", "lte", "eq", "gte", "gt".
type CountCondition struct {
	Op string `json:"op" yaml:"op"`
	N  int    `json:"n" yaml:"n"`
}

// Condition is a single predicate over the board. All set fields must hold
// for the condition to be satisfied; a rule's conditions are conjunctive.
type Condition struct {
	OpponentLeaderName        string          `json:"opponentLeaderName,omitempty" yaml:"opponentLeaderName,omitempty"`
	OpponentFieldContainsName string          `json:"opponentFieldContainsName,omitempty" yaml:"opponentFieldContainsName,omitempty"`
	AllyFieldContainsName     string          `json:"allyFieldContainsName,omitempty" yaml:"allyFieldContainsName,omitempty"`
	OpponentHandCount         *CountCondition `json:"opponentHandCount,omitempty" yaml:"opponentHandCount,omitempty"`
}

// Filter narrows the set of cards a rule can target. Set fields compose
// conjunctively; GameTypeOr is the one disjunctive slot.
type Filter struct {
	GameType     string   `json:"gameType,omitempty" yaml:"gameType,omitempty"`
	GameTypeOr   []string `json:"gameTypeOr,omitempty" yaml:"gameTypeOr,omitempty"`
	Trait        string   `json:"trait,omitempty" yaml:"trait,omitempty"`
	NameContains string   `json:"nameContains,omitempty" yaml:"nameContains,omitempty"`
	CardType     Kind     `json:"cardType,omitempty" yaml:"cardType,omitempty"`
}

// Target describes what an effect rule applies to.
type Target struct {
	Owner             TargetOwner `json:"owner" yaml:"owner"`
	Zones             []Zone      `json:"zones,omitempty" yaml:"zones,omitempty"`
	Filter            Filter      `json:"filter,omitempty" yaml:"filter,omitempty"`
	TargetCount       int         `json:"targetCount,omitempty" yaml:"targetCount,omitempty"`
	RequiresSelection bool        `json:"requiresSelection,omitempty" yaml:"requiresSelection,omitempty"`
}

// EffectRule is one declarative effect entry on a card: when it fires
// (Trigger), whether it fires (Conditions), what it touches (Target) and
// what it does (Effect plus parameters).
type EffectRule struct {
	Trigger    Trigger     `json:"trigger" yaml:"trigger"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Target     Target      `json:"target" yaml:"target"`
	Effect     EffectKind  `json:"effect" yaml:"effect"`

	// Amount carries the numeric parameter: delta for powerBoost, value
	// for setPower and totalPowerNerf, count for drawCards/randomDiscard.
	Amount int `json:"amount,omitempty" yaml:"amount,omitempty"`

	// searchCard parameters.
	SearchCount int  `json:"searchCount,omitempty" yaml:"searchCount,omitempty"`
	SelectCount int  `json:"selectCount,omitempty" yaml:"selectCount,omitempty"`
	Destination Zone `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Definition is the immutable static data for one card id.
type Definition struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	GameType  string   `json:"gameType,omitempty" yaml:"gameType,omitempty"`
	Traits    []string `json:"traits,omitempty" yaml:"traits,omitempty"`
	BasePower int      `json:"basePower,omitempty" yaml:"basePower,omitempty"`

	Effects []EffectRule `json:"effects,omitempty" yaml:"effects,omitempty"`

	// ZoneCompatibility is set on leaders only: for each character zone,
	// the game types that may be played there face-up.
	ZoneCompatibility map[Zone][]string `json:"zoneCompatibility,omitempty" yaml:"zoneCompatibility,omitempty"`

	ImmuneToNeutralization bool `json:"immuneToNeutralization,omitempty" yaml:"immuneToNeutralization,omitempty"`
}

// HasTrait reports whether the definition carries the given trait label.
func (d *Definition) HasTrait(trait string) bool {
	for _, t := range d.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// Matches reports whether the definition passes every set field of the
// filter.
func (d *Definition) Matches(f Filter) bool {
	if f.GameType != "" && d.GameType != f.GameType {
		return false
	}
	if len(f.GameTypeOr) > 0 {
		ok := false
		for _, gt := range f.GameTypeOr {
			if d.GameType == gt {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Trait != "" && !d.HasTrait(f.Trait) {
		return false
	}
	if f.NameContains != "" && !containsFold(d.Name, f.NameContains) {
		return false
	}
	if f.CardType != "" && d.Kind != f.CardType {
		return false
	}
	return true
}
