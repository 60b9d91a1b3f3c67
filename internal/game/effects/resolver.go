package effects

import (
	"fmt"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// Input tells the resolver what happened in the action being resolved.
type Input struct {
	// EnteredCardID is the card that entered the field this action, if
	// any. Only its onPlay rules are eligible to fire.
	EnteredCardID string
	EnteredOwner  string
	// InBattle enables finalCalculation rules.
	InBattle bool
}

// SelectionRequest describes a choice a player owes before resolution can
// continue. The engine turns it into the document's pendingSelection.
type SelectionRequest struct {
	PlayerID      string
	Kind          state.SelectionKind
	SelectCount   int
	EligibleCards []string
	Context       state.SelectionContext
}

// Immediate is a primary-state mutation requested by a triggered rule. The
// resolver itself never mutates state, so draws, discards and automatic
// targeted effects are handed back to the engine as descriptors.
type Immediate struct {
	Effect       card.EffectKind
	Amount       int
	SourceCardID string
	SourceOwner  string
	TargetOwner  string
	Targets      []TargetRef
}

// Output is the result of one resolve pass.
type Output struct {
	Derived    map[string]*state.DerivedEffects
	Selection  *SelectionRequest
	Immediates []Immediate
}

// Resolver recomputes derived state from the declarative rules over the
// current board.
type Resolver struct {
	reg *card.Registry
}

// NewResolver returns a resolver reading definitions from reg.
func NewResolver(reg *card.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// ruleInstance is one rule bound to its source card on the board, in
// deterministic collection order.
type ruleInstance struct {
	owner    string
	zone     card.Zone
	cardID   string
	sequence int
	def      *card.Definition
	rule     card.EffectRule
}

// Resolve recomputes every player's derived effects from scratch. Given the
// same document it always produces the same output; re-resolving an already
// resolved state changes nothing.
func (r *Resolver) Resolve(st *state.GameState, in Input) (*Output, error) {
	out := &Output{Derived: make(map[string]*state.DerivedEffects, len(st.PlayerOrder))}

	// Step 1: reset derived state; restrictions default from the current
	// leader's zone compatibility.
	for _, pid := range st.PlayerOrder {
		d, err := r.defaultDerived(st, pid)
		if err != nil {
			return nil, err
		}
		out.Derived[pid] = d
	}

	// Step 2: collect rules in board scan order: current player first,
	// zones top, left, right, help, sp, insertion order within a zone,
	// rule order on the card. Leader rules follow the field rules of
	// their owner.
	rules, err := r.collect(st)
	if err != nil {
		return nil, err
	}

	// Step 3: neutralization first pass.
	for _, inst := range rules {
		if inst.rule.Effect != card.EffectNeutralizeEffect || !r.continuousActive(st, inst) {
			continue
		}
		if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
			continue
		}
		targets, _ := SelectTargets(r.reg, st, inst.owner, inst.rule)
		for _, t := range targets {
			r.disable(out, t)
		}
	}
	// Selection-applied neutralizations are primary state; replay them in
	// sequence order, skipping disabled sources and departed targets.
	for _, m := range st.AppliedModifiers {
		if m.Effect != card.EffectNeutralizeEffect {
			continue
		}
		if r.modifierDisabled(st, out, m) {
			continue
		}
		if zone, ok := r.findOnField(st, m.TargetOwner, m.TargetCardID); ok {
			r.disable(out, TargetRef{Owner: m.TargetOwner, Zone: zone, CardID: m.TargetCardID})
		}
	}

	// Step 4: restrictions and flags.
	for _, inst := range rules {
		if !r.continuousActive(st, inst) || r.sourceDisabled(out, inst) {
			continue
		}
		if !isFlagEffect(inst.rule.Effect) {
			continue
		}
		if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
			continue
		}
		for _, affected := range r.resolveOwners(st, inst.owner, inst.rule.Target.Owner) {
			d := out.Derived[affected]
			if d == nil {
				continue
			}
			switch inst.rule.Effect {
			case card.EffectPreventPlay:
				if d.SpecialFlags.PreventPlay == nil {
					d.SpecialFlags.PreventPlay = make(map[card.Zone]bool)
				}
				zones := inst.rule.Target.Zones
				if len(zones) == 0 {
					zones = card.FieldZones()
				}
				for _, z := range zones {
					d.SpecialFlags.PreventPlay[z] = true
				}
			case card.EffectForceSPPlay:
				d.SpecialFlags.ForceSPPlay = true
			case card.EffectZonePlacementFreedom:
				d.SpecialFlags.ZonePlacementFreedom = true
				for _, z := range card.CharacterZones() {
					d.ZoneRestrictions[z] = []string{state.GameTypeAll}
				}
			case card.EffectDisableComboBonus:
				d.ComboBonusDisabled = true
			}
		}
	}

	// Step 5: base powers for face-up characters. Face-down cards
	// contribute nothing.
	for _, pid := range st.PlayerOrder {
		z := st.ZonesOf(pid)
		if z == nil {
			continue
		}
		for _, zone := range card.CharacterZones() {
			for _, p := range z.Row(zone) {
				if !p.FaceUp {
					continue
				}
				def, err := r.reg.Lookup(p.CardID)
				if err != nil {
					return nil, fmt.Errorf("placement %s: %w", p.CardID, err)
				}
				if def.Kind == card.KindCharacter {
					out.Derived[pid].CalculatedPowers[p.CardID] = def.BasePower
				}
			}
		}
	}

	// Step 6: setPower takes precedence over additive effects; last in
	// deterministic order wins.
	for _, inst := range rules {
		if inst.rule.Effect != card.EffectSetPower || !r.continuousActive(st, inst) || r.sourceDisabled(out, inst) {
			continue
		}
		if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
			continue
		}
		targets, _ := SelectTargets(r.reg, st, inst.owner, inst.rule)
		for _, t := range targets {
			if _, ok := out.Derived[t.Owner].CalculatedPowers[t.CardID]; ok {
				out.Derived[t.Owner].CalculatedPowers[t.CardID] = inst.rule.Amount
			}
		}
	}

	// Steps 7 and 8: additive boosts, leader rules included via the same
	// collection.
	for _, inst := range rules {
		if inst.rule.Effect != card.EffectPowerBoost || !r.continuousActive(st, inst) || r.sourceDisabled(out, inst) {
			continue
		}
		if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
			continue
		}
		targets, _ := SelectTargets(r.reg, st, inst.owner, inst.rule)
		for _, t := range targets {
			if _, ok := out.Derived[t.Owner].CalculatedPowers[t.CardID]; ok {
				out.Derived[t.Owner].CalculatedPowers[t.CardID] += inst.rule.Amount
			}
		}
	}

	// Replay selection-applied power modifiers in sequence order.
	for _, m := range st.AppliedModifiers {
		if m.Effect != card.EffectSetPower && m.Effect != card.EffectPowerBoost {
			continue
		}
		if r.modifierDisabled(st, out, m) {
			continue
		}
		d := out.Derived[m.TargetOwner]
		if d == nil {
			continue
		}
		if _, ok := d.CalculatedPowers[m.TargetCardID]; !ok {
			continue
		}
		switch m.Effect {
		case card.EffectSetPower:
			d.CalculatedPowers[m.TargetCardID] = m.Amount
		case card.EffectPowerBoost:
			d.CalculatedPowers[m.TargetCardID] += m.Amount
		}
	}

	// Step 9: triggered effects for the card that entered this action.
	if in.EnteredCardID != "" {
		done, err := r.resolveOnPlay(st, in, rules, out)
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
	}

	// Step 10: finalCalculation rules apply to aggregate totals during
	// battle only.
	if in.InBattle {
		for _, inst := range rules {
			if inst.rule.Trigger != card.TriggerFinalCalculation || r.sourceDisabled(out, inst) {
				continue
			}
			if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
				continue
			}
			switch inst.rule.Effect {
			case card.EffectTotalPowerNerf:
				for _, affected := range r.resolveOwners(st, inst.owner, inst.rule.Target.Owner) {
					if d := out.Derived[affected]; d != nil {
						d.TotalPowerModifier -= inst.rule.Amount
					}
				}
			case card.EffectPowerBoost:
				targets, _ := SelectTargets(r.reg, st, inst.owner, inst.rule)
				for _, t := range targets {
					if d := out.Derived[t.Owner]; d != nil {
						d.TotalPowerModifier += inst.rule.Amount
					}
				}
			}
		}
	}

	return out, nil
}

// resolveOnPlay processes the onPlay rules of the card that just entered.
// Returns true when a selection request was emitted and resolution must
// stop.
func (r *Resolver) resolveOnPlay(st *state.GameState, in Input, rules []ruleInstance, out *Output) (bool, error) {
	def, err := r.reg.Lookup(in.EnteredCardID)
	if err != nil {
		return false, err
	}
	zone, ok := r.findOnField(st, in.EnteredOwner, in.EnteredCardID)
	if !ok {
		return false, nil
	}
	if p := placementAt(st, in.EnteredOwner, zone, in.EnteredCardID); p == nil || !p.FaceUp {
		return false, nil
	}
	if r.summonSilenced(st, rules, out, in.EnteredOwner, zone, in.EnteredCardID) {
		return false, nil
	}

	for _, rule := range def.Effects {
		if rule.Trigger != card.TriggerOnPlay {
			continue
		}
		if !EvaluateConditions(r.reg, st, in.EnteredOwner, rule) {
			continue
		}
		switch rule.Effect {
		case card.EffectSearchCard:
			req := r.buildDeckSearch(st, in, rule)
			if req == nil {
				continue // empty deck or no eligible cards: no-op
			}
			out.Selection = req
			return true, nil

		case card.EffectDrawCards, card.EffectRandomDiscard:
			affected := r.resolveOwners(st, in.EnteredOwner, rule.Target.Owner)
			if len(affected) == 0 {
				affected = []string{in.EnteredOwner}
			}
			for _, owner := range affected {
				out.Immediates = append(out.Immediates, Immediate{
					Effect:       rule.Effect,
					Amount:       rule.Amount,
					SourceCardID: in.EnteredCardID,
					SourceOwner:  in.EnteredOwner,
					TargetOwner:  owner,
				})
			}

		default:
			targets, needsSelection := SelectTargets(r.reg, st, in.EnteredOwner, rule)
			if len(targets) == 0 {
				continue
			}
			if needsSelection {
				selectCount := rule.Target.TargetCount
				if selectCount <= 0 {
					selectCount = 1
				}
				if selectCount > len(targets) {
					selectCount = len(targets)
				}
				kind := state.SelectionFieldTarget
				if selectCount == 1 {
					kind = state.SelectionSingle
				}
				ids := make([]string, len(targets))
				for i, t := range targets {
					ids[i] = t.CardID
				}
				out.Selection = &SelectionRequest{
					PlayerID:      in.EnteredOwner,
					Kind:          kind,
					SelectCount:   selectCount,
					EligibleCards: ids,
					Context: state.SelectionContext{
						SourceCardID: in.EnteredCardID,
						SourceOwner:  in.EnteredOwner,
						Effect:       rule.Effect,
						Amount:       rule.Amount,
					},
				}
				return true, nil
			}
			out.Immediates = append(out.Immediates, Immediate{
				Effect:       rule.Effect,
				Amount:       rule.Amount,
				SourceCardID: in.EnteredCardID,
				SourceOwner:  in.EnteredOwner,
				Targets:      targets,
			})
		}
	}
	return false, nil
}

// buildDeckSearch inspects the top of the owner's deck and assembles a
// deckSearch selection request, or nil when nothing is eligible.
func (r *Resolver) buildDeckSearch(st *state.GameState, in Input, rule card.EffectRule) *SelectionRequest {
	p := st.Player(in.EnteredOwner)
	if p == nil || len(p.MainDeck) == 0 {
		return nil
	}
	searchCount := rule.SearchCount
	if searchCount <= 0 || searchCount > len(p.MainDeck) {
		searchCount = len(p.MainDeck)
	}
	searched := p.MainDeck[:searchCount]

	var eligible []string
	for _, id := range searched {
		def, err := r.reg.Lookup(id)
		if err == nil && def.Matches(rule.Target.Filter) {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	selectCount := rule.SelectCount
	if selectCount <= 0 {
		selectCount = 1
	}
	if selectCount > len(eligible) {
		selectCount = len(eligible)
	}
	return &SelectionRequest{
		PlayerID:      in.EnteredOwner,
		Kind:          state.SelectionDeckSearch,
		SelectCount:   selectCount,
		EligibleCards: eligible,
		Context: state.SelectionContext{
			SourceCardID:  in.EnteredCardID,
			SourceOwner:   in.EnteredOwner,
			Effect:        card.EffectSearchCard,
			Destination:   rule.Destination,
			SearchedCards: append([]string(nil), searched...),
		},
	}
}

// summonSilenced reports whether an active silenceOnSummon rule covers the
// entered card.
func (r *Resolver) summonSilenced(st *state.GameState, rules []ruleInstance, out *Output, enteredOwner string, zone card.Zone, cardID string) bool {
	for _, inst := range rules {
		if inst.rule.Effect != card.EffectSilenceOnSummon || !r.continuousActive(st, inst) || r.sourceDisabled(out, inst) {
			continue
		}
		if inst.cardID == cardID {
			continue
		}
		if !EvaluateConditions(r.reg, st, inst.owner, inst.rule) {
			continue
		}
		if matchesTargetClause(r.reg, st, inst.owner, inst.rule, enteredOwner, zone, cardID) {
			return true
		}
	}
	return false
}

func (r *Resolver) defaultDerived(st *state.GameState, playerID string) (*state.DerivedEffects, error) {
	d := state.NewDerivedEffects()
	leaderID := st.CurrentLeaderID(playerID)
	if z := st.ZonesOf(playerID); z != nil && z.Leader != nil {
		leaderID = z.Leader.CardID
	}
	var compat map[card.Zone][]string
	if leaderID != "" {
		def, err := r.reg.Lookup(leaderID)
		if err != nil {
			return nil, fmt.Errorf("leader %s: %w", leaderID, err)
		}
		compat = def.ZoneCompatibility
	}
	for _, zone := range card.CharacterZones() {
		if allowed, ok := compat[zone]; ok {
			d.ZoneRestrictions[zone] = append([]string(nil), allowed...)
		} else {
			d.ZoneRestrictions[zone] = []string{state.GameTypeAll}
		}
	}
	return d, nil
}

// collect walks the board in scan order and flattens every face-up card's
// rule list into bound instances.
func (r *Resolver) collect(st *state.GameState) ([]ruleInstance, error) {
	var out []ruleInstance
	for _, owner := range st.ScanOrder() {
		z := st.ZonesOf(owner)
		if z == nil {
			continue
		}
		for _, zone := range card.FieldZones() {
			for _, p := range z.Placements(zone) {
				if !p.FaceUp {
					continue
				}
				def, err := r.reg.Lookup(p.CardID)
				if err != nil {
					return nil, fmt.Errorf("placement %s: %w", p.CardID, err)
				}
				for _, rule := range def.Effects {
					out = append(out, ruleInstance{owner: owner, zone: zone, cardID: p.CardID, sequence: p.Sequence, def: def, rule: rule})
				}
			}
		}

		// Leader rules evaluate with the leader as source, after the
		// owner's field cards.
		leaderID := st.CurrentLeaderID(owner)
		seq := 0
		if z.Leader != nil {
			leaderID = z.Leader.CardID
			seq = z.Leader.Sequence
		}
		if leaderID != "" {
			def, err := r.reg.Lookup(leaderID)
			if err != nil {
				return nil, fmt.Errorf("leader %s: %w", leaderID, err)
			}
			for _, rule := range def.Effects {
				out = append(out, ruleInstance{owner: owner, zone: card.ZoneLeader, cardID: leaderID, sequence: seq, def: def, rule: rule})
			}
		}
	}
	return out, nil
}

// continuousActive reports whether a rule participates in the continuous
// passes for the current phase.
func (r *Resolver) continuousActive(st *state.GameState, inst ruleInstance) bool {
	switch inst.rule.Trigger {
	case card.TriggerAlways:
		return true
	case card.TriggerSPPhase:
		return st.Phase == state.PhaseSP
	}
	return false
}

func (r *Resolver) sourceDisabled(out *Output, inst ruleInstance) bool {
	for _, d := range out.Derived {
		if d.DisabledCards[inst.cardID] {
			return true
		}
	}
	return false
}

func (r *Resolver) modifierDisabled(st *state.GameState, out *Output, m state.AppliedModifier) bool {
	for _, d := range out.Derived {
		if d.DisabledCards[m.SourceCardID] {
			return true
		}
	}
	return false
}

func (r *Resolver) disable(out *Output, t TargetRef) {
	def, err := r.reg.Lookup(t.CardID)
	if err == nil && def.ImmuneToNeutralization {
		return
	}
	if d := out.Derived[t.Owner]; d != nil {
		d.DisabledCards[t.CardID] = true
	}
}

func (r *Resolver) resolveOwners(st *state.GameState, ruleOwner string, target card.TargetOwner) []string {
	switch target {
	case card.OwnerSelf:
		return []string{ruleOwner}
	case card.OwnerOpponent:
		return []string{st.Opponent(ruleOwner)}
	case card.OwnerBoth:
		return []string{ruleOwner, st.Opponent(ruleOwner)}
	}
	return nil
}

func (r *Resolver) findOnField(st *state.GameState, owner, cardID string) (card.Zone, bool) {
	z := st.ZonesOf(owner)
	if z == nil {
		return "", false
	}
	for _, zone := range card.FieldZones() {
		for _, p := range z.Placements(zone) {
			if p.CardID == cardID {
				return zone, true
			}
		}
	}
	return "", false
}

func placementAt(st *state.GameState, owner string, zone card.Zone, cardID string) *state.Placement {
	z := st.ZonesOf(owner)
	if z == nil {
		return nil
	}
	switch zone {
	case card.ZoneTop, card.ZoneLeft, card.ZoneRight:
		row := z.Row(zone)
		for i := range row {
			if row[i].CardID == cardID {
				return &row[i]
			}
		}
	default:
		if p := z.Slot(zone); p != nil && p.CardID == cardID {
			return p
		}
	}
	return nil
}

func isFlagEffect(kind card.EffectKind) bool {
	switch kind {
	case card.EffectPreventPlay, card.EffectForceSPPlay, card.EffectZonePlacementFreedom, card.EffectDisableComboBonus:
		return true
	}
	return false
}
