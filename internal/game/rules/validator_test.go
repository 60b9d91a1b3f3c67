package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

func testRegistry(t *testing.T) *card.Registry {
	t.Helper()
	reg, err := card.LoadDefaultSet()
	require.NoError(t, err)
	return reg
}

func mainPhaseState() *state.GameState {
	st := &state.GameState{
		GameID:        "g1",
		Phase:         state.PhaseMain,
		Round:         1,
		FirstPlayer:   "p1",
		CurrentPlayer: "p1",
		GameStarted:   true,
		PlayerOrder:   []string{"p1", "p2"},
		Players: map[string]*state.PlayerState{
			"p1": {ID: "p1", Hand: []string{"c-1", "h-3", "s-1"}, LeaderSequence: []string{"l-trump"}},
			"p2": {ID: "p2", Hand: []string{"c-12"}, LeaderSequence: []string{"l-lincoln"}},
		},
		Zones: map[string]*state.PlayerZones{
			"p1": {Leader: &state.Placement{CardID: "l-trump", FaceUp: true}},
			"p2": {Leader: &state.Placement{CardID: "l-lincoln", FaceUp: true}},
		},
		Journal: journal.New(),
	}
	// Trump allows patriots in the left zone.
	d := st.DerivedOf("p1")
	d.ZoneRestrictions[card.ZoneTop] = []string{"right-wing", "freedom", "economy"}
	d.ZoneRestrictions[card.ZoneLeft] = []string{"right-wing", "freedom", "patriot"}
	d.ZoneRestrictions[card.ZoneRight] = []string{"right-wing", "patriot", "media"}
	return st
}

func TestValidatePlayTable(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name     string
		mutate   func(*state.GameState)
		playerID string
		action   state.Action
		wantKind FailureKind // "" means accepted
	}{
		{
			name:     "face-up character into compatible zone",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft},
		},
		{
			name:     "not your turn",
			playerID: "p2",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneTop},
			wantKind: FailNotYourTurn,
		},
		{
			name:     "hand index out of range",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 7, Zone: card.ZoneLeft},
			wantKind: FailInvalidHandIndex,
		},
		{
			name:     "negative hand index",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: -1, Zone: card.ZoneLeft},
			wantKind: FailInvalidHandIndex,
		},
		{
			name:     "zone compatibility rejected",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneTop},
			wantKind: FailZoneCompatibility,
		},
		{
			name:     "face-down bypasses compatibility",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCardBack, HandIndex: 0, Zone: card.ZoneTop},
		},
		{
			name:     "unknown zone",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: "basement"},
			wantKind: FailInvalidZone,
		},
		{
			name:     "help card face-up into character zone",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 1, Zone: card.ZoneLeft},
			wantKind: FailInvalidZone,
		},
		{
			name:     "character face-up into help zone",
			playerID: "p1",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneHelp},
			wantKind: FailInvalidZone,
		},
		{
			name:     "help zone occupied",
			playerID: "p1",
			mutate: func(st *state.GameState) {
				st.Zones["p1"].Help = &state.Placement{CardID: "h-1", FaceUp: true, Sequence: 1}
			},
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 1, Zone: card.ZoneHelp},
			wantKind: FailZoneOccupied,
		},
		{
			name:     "prevent play flag blocks zone",
			playerID: "p1",
			mutate: func(st *state.GameState) {
				st.DerivedOf("p1").SpecialFlags.PreventPlay = map[card.Zone]bool{card.ZoneHelp: true}
			},
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 1, Zone: card.ZoneHelp},
			wantKind: FailForbidden,
		},
		{
			name:     "sp phase requires face-down sp play",
			playerID: "p1",
			mutate:   func(st *state.GameState) { st.Phase = state.PhaseSP },
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft},
			wantKind: FailWrongPhase,
		},
		{
			name:     "sp phase face-down into sp zone accepted",
			playerID: "p1",
			mutate:   func(st *state.GameState) { st.Phase = state.PhaseSP },
			action:   state.Action{Type: state.ActionPlayCardBack, HandIndex: 2, Zone: card.ZoneSP},
		},
		{
			name:     "sp phase face-down outside sp zone rejected",
			playerID: "p1",
			mutate:   func(st *state.GameState) { st.Phase = state.PhaseSP },
			action:   state.Action{Type: state.ActionPlayCardBack, HandIndex: 0, Zone: card.ZoneTop},
			wantKind: FailInvalidZone,
		},
		{
			name:     "no plays during draw phase",
			playerID: "p1",
			mutate:   func(st *state.GameState) { st.Phase = state.PhaseDraw },
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft},
			wantKind: FailWrongPhase,
		},
		{
			name:     "player not in game",
			playerID: "ghost",
			action:   state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft},
			wantKind: FailForbidden,
		},
		{
			name:     "game over rejects everything",
			playerID: "p1",
			mutate:   func(st *state.GameState) { st.Phase = state.PhaseGameOver },
			action:   state.Action{Type: state.ActionPass},
			wantKind: FailWrongPhase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := mainPhaseState()
			if tt.mutate != nil {
				tt.mutate(st)
			}
			f := Validate(reg, st, tt.playerID, tt.action)
			if tt.wantKind == "" {
				assert.Nil(t, f)
			} else {
				require.NotNil(t, f)
				assert.Equal(t, tt.wantKind, f.Kind)
			}
		})
	}
}

func TestValidatePendingSelectionGatesEverything(t *testing.T) {
	reg := testRegistry(t)
	st := mainPhaseState()
	st.PendingSelection = &state.PendingSelection{
		SelectionID:   "sel-1",
		PlayerID:      "p1",
		Kind:          state.SelectionSingle,
		SelectCount:   1,
		EligibleCards: []string{"c-1", "c-4"},
	}

	// Even Pass is rejected while the selection is outstanding.
	f := Validate(reg, st, "p1", state.Action{Type: state.ActionPass})
	require.NotNil(t, f)
	assert.Equal(t, FailNoPendingSelection, f.Kind)

	f = Validate(reg, st, "p1", state.Action{Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft})
	require.NotNil(t, f)
	assert.Equal(t, FailNoPendingSelection, f.Kind)

	// The matching SelectCard goes through.
	f = Validate(reg, st, "p1", state.Action{
		Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1"},
	})
	assert.Nil(t, f)
}

func TestValidateSelectTable(t *testing.T) {
	reg := testRegistry(t)

	base := func() *state.GameState {
		st := mainPhaseState()
		st.PendingSelection = &state.PendingSelection{
			SelectionID:   "sel-1",
			PlayerID:      "p1",
			Kind:          state.SelectionFieldTarget,
			SelectCount:   2,
			EligibleCards: []string{"c-1", "c-4", "c-13"},
		}
		return st
	}

	tests := []struct {
		name     string
		playerID string
		action   state.Action
		wantKind FailureKind
	}{
		{
			name:     "valid selection",
			playerID: "p1",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1", "c-4"}},
		},
		{
			name:     "wrong selection id",
			playerID: "p1",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "stale", SelectedCardIDs: []string{"c-1", "c-4"}},
			wantKind: FailInvalidSelection,
		},
		{
			name:     "wrong player",
			playerID: "p2",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1", "c-4"}},
			wantKind: FailNotYourTurn,
		},
		{
			name:     "wrong count",
			playerID: "p1",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1"}},
			wantKind: FailInvalidSelection,
		},
		{
			name:     "ineligible card",
			playerID: "p1",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1", "c-99"}},
			wantKind: FailInvalidSelection,
		},
		{
			name:     "duplicate card",
			playerID: "p1",
			action:   state.Action{Type: state.ActionSelectCard, SelectionID: "sel-1", SelectedCardIDs: []string{"c-1", "c-1"}},
			wantKind: FailInvalidSelection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Validate(reg, base(), tt.playerID, tt.action)
			if tt.wantKind == "" {
				assert.Nil(t, f)
			} else {
				require.NotNil(t, f)
				assert.Equal(t, tt.wantKind, f.Kind)
			}
		})
	}
}

func TestValidateSelectWithoutPending(t *testing.T) {
	reg := testRegistry(t)
	st := mainPhaseState()

	f := Validate(reg, st, "p1", state.Action{Type: state.ActionSelectCard, SelectionID: "x", SelectedCardIDs: []string{"c-1"}})
	require.NotNil(t, f)
	assert.Equal(t, FailNoPendingSelection, f.Kind)
}

func TestValidateRedraw(t *testing.T) {
	reg := testRegistry(t)
	st := mainPhaseState()
	st.Phase = state.PhaseStartRedraw
	st.Players["p1"].RedrawsRemaining = 1

	assert.Nil(t, Validate(reg, st, "p1", state.Action{Type: state.ActionRedraw}))

	st.Players["p1"].RedrawsRemaining = 0
	f := Validate(reg, st, "p1", state.Action{Type: state.ActionRedraw})
	require.NotNil(t, f)
	assert.Equal(t, FailForbidden, f.Kind)

	st.Players["p1"].RedrawsRemaining = 1
	st.Players["p1"].IsReady = true
	f = Validate(reg, st, "p1", state.Action{Type: state.ActionRedraw})
	require.NotNil(t, f)
	assert.Equal(t, FailForbidden, f.Kind)

	st.Phase = state.PhaseMain
	st.Players["p1"].IsReady = false
	f = Validate(reg, st, "p1", state.Action{Type: state.ActionRedraw})
	require.NotNil(t, f)
	assert.Equal(t, FailWrongPhase, f.Kind)
}

func TestValidatePassDuringStartRedrawIsNotTurnGated(t *testing.T) {
	reg := testRegistry(t)
	st := mainPhaseState()
	st.Phase = state.PhaseStartRedraw

	assert.Nil(t, Validate(reg, st, "p2", state.Action{Type: state.ActionPass}))
}

func TestValidatePassForcedSPPlay(t *testing.T) {
	reg := testRegistry(t)
	st := mainPhaseState()
	st.Phase = state.PhaseSP
	st.DerivedOf("p1").SpecialFlags.ForceSPPlay = true

	f := Validate(reg, st, "p1", state.Action{Type: state.ActionPass})
	require.NotNil(t, f)
	assert.Equal(t, FailForbidden, f.Kind)

	// Once the sp slot is filled the pass is allowed again.
	st.Zones["p1"].SP = &state.Placement{CardID: "s-1", FaceUp: false, Sequence: 1}
	assert.Nil(t, Validate(reg, st, "p1", state.Action{Type: state.ActionPass}))
}
