// Package integration exercises the engine through whole-game flows, the way
// a client would drive it over the API.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game"
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/rules"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
	"github.com/revrebgame/revreb-server-go/internal/repository"
)

func newEngine(t *testing.T) (*game.Engine, repository.Store) {
	t.Helper()
	reg, err := card.LoadDefaultSet()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	return game.NewEngine(reg, store, game.DefaultOptions(), zap.NewNop()), store
}

// ackAll acknowledges every outstanding journal event so phase transitions
// that wait on the viewer can proceed.
func ackAll(t *testing.T, e *game.Engine, gameID string, st *state.GameState) *state.GameState {
	t.Helper()
	var ids []int64
	for _, ev := range st.Journal.Events {
		ids = append(ids, ev.ID)
	}
	if len(ids) == 0 {
		return st
	}
	out, err := e.AcknowledgeEvents(context.Background(), gameID, ids)
	require.NoError(t, err)
	return out
}

func act(t *testing.T, e *game.Engine, gameID, playerID string, a state.Action) *state.GameState {
	t.Helper()
	st, err := e.ProcessAction(context.Background(), gameID, playerID, a)
	require.NoError(t, err)
	return st
}

func TestFullRoundFlow(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	deck := []string{"c-1", "c-4", "c-13", "c-12", "c-3", "c-6", "c-9", "h-3", "s-1", "c-5"}
	st, err := e.NewGame(ctx, "g1",
		game.PlayerSetup{ID: "p1", Name: "Ada", Deck: deck, Leaders: []string{"l-trump", "l-washington"}},
		game.PlayerSetup{ID: "p2", Name: "Ben", Deck: deck, Leaders: []string{"l-lincoln", "l-gandhi"}},
		2024,
	)
	require.NoError(t, err)
	require.Equal(t, state.PhaseStartRedraw, st.Phase)

	// Opening: both players keep their hands.
	act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})
	st = act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	require.Equal(t, state.PhaseDraw, st.Phase)
	require.Equal(t, "p1", st.CurrentPlayer)

	st = ackAll(t, e, "g1", st)
	require.Equal(t, state.PhaseMain, st.Phase)

	// p1 fields whatever the shuffle put on top of the hand; a face-down
	// play never violates compatibility, so the flow cannot stall on the
	// draw order.
	st = act(t, e, "g1", "p1", state.Action{
		Type: state.ActionPlayCardBack, HandIndex: 0, Zone: card.ZoneTop,
	})
	require.Equal(t, state.PhaseDraw, st.Phase)
	require.Equal(t, "p2", st.CurrentPlayer)

	st = ackAll(t, e, "g1", st)
	require.Equal(t, state.PhaseMain, st.Phase)

	// Both players end the main phase. Each pass hands a draw phase to the
	// other side, so the viewer acknowledges in between.
	st = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})
	require.Equal(t, state.PhaseDraw, st.Phase)
	st = ackAll(t, e, "g1", st)
	st = act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	require.Equal(t, state.PhaseSP, st.Phase)
	require.Equal(t, "p1", st.CurrentPlayer)

	act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	st = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})

	assert.Equal(t, 2, st.Round)
	assert.Equal(t, state.PhaseDraw, st.Phase)
	// The board was cleared for the new round.
	assert.Empty(t, st.Zones["p1"].Top)
	assert.Empty(t, st.Zones["p1"].Left)
	assert.Empty(t, st.Zones["p1"].Right)
	// A face-down-only board produces no power, so the battle tied.
	assert.Equal(t, 0, st.Players["p1"].PlayerPoint)
	assert.Equal(t, 0, st.Players["p2"].PlayerPoint)
}

func TestFaceUpPlaysScoreTheRound(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	st := &state.GameState{
		GameID:        "g1",
		Phase:         state.PhaseMain,
		Round:         1,
		FirstPlayer:   "p1",
		CurrentPlayer: "p1",
		GameStarted:   true,
		PlayerOrder:   []string{"p1", "p2"},
		Players: map[string]*state.PlayerState{
			"p1": {ID: "p1", Hand: []string{"c-1"}, MainDeck: []string{"c-12", "c-5"}, LeaderSequence: []string{"l-trump"}},
			"p2": {ID: "p2", Hand: []string{"c-14"}, MainDeck: []string{"c-3", "c-6"}, LeaderSequence: []string{"l-lincoln"}},
		},
		Zones: map[string]*state.PlayerZones{
			"p1": {Leader: &state.Placement{CardID: "l-trump", FaceUp: true}},
			"p2": {Leader: &state.Placement{CardID: "l-lincoln", FaceUp: true}},
		},
		Journal:  journal.New(),
		RandSeed: 11,
	}
	_, err := e.InjectState(ctx, "g1", st)
	require.NoError(t, err)

	// p1 fields the boosted patriot, p2 never fields anything.
	out := act(t, e, "g1", "p1", state.Action{
		Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneLeft,
	})
	require.Equal(t, state.PhaseDraw, out.Phase)
	out = ackAll(t, e, "g1", out)

	out = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})
	out = ackAll(t, e, "g1", out)
	out = act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	require.Equal(t, state.PhaseSP, out.Phase)

	act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	out = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})

	// 145 beats an empty board; round one pays ten points.
	assert.Equal(t, 10, out.Players["p1"].PlayerPoint)
	assert.Equal(t, 0, out.Players["p2"].PlayerPoint)
	assert.Equal(t, 2, out.Round)
}

func TestSuspendedSelectionAcrossEngineRestart(t *testing.T) {
	reg, err := card.LoadDefaultSet()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	e := game.NewEngine(reg, store, game.DefaultOptions(), zap.NewNop())
	ctx := context.Background()

	st := &state.GameState{
		GameID:        "g1",
		Phase:         state.PhaseMain,
		Round:         1,
		FirstPlayer:   "p1",
		CurrentPlayer: "p1",
		GameStarted:   true,
		PlayerOrder:   []string{"p1", "p2"},
		Players: map[string]*state.PlayerState{
			"p1": {ID: "p1", Hand: []string{"c-10"}, MainDeck: []string{"s-1", "c-12", "c-5"}, LeaderSequence: []string{"l-trump"}},
			"p2": {ID: "p2", Hand: []string{"c-14"}, MainDeck: []string{"c-3"}, LeaderSequence: []string{"l-lincoln"}},
		},
		Zones: map[string]*state.PlayerZones{
			"p1": {Leader: &state.Placement{CardID: "l-trump", FaceUp: true}},
			"p2": {Leader: &state.Placement{CardID: "l-lincoln", FaceUp: true}},
		},
		Journal:  journal.New(),
		RandSeed: 3,
	}
	_, err = e.InjectState(ctx, "g1", st)
	require.NoError(t, err)

	out := act(t, e, "g1", "p1", state.Action{
		Type: state.ActionPlayCard, HandIndex: 0, Zone: card.ZoneTop,
	})
	require.NotNil(t, out.PendingSelection)
	selID := out.PendingSelection.SelectionID

	// A fresh engine over the same store resumes the suspension, as a
	// restarted process would.
	e2 := game.NewEngine(reg, store, game.DefaultOptions(), zap.NewNop())
	out, err = e2.ProcessAction(ctx, "g1", "p1", state.Action{
		Type:            state.ActionSelectCard,
		SelectionID:     selID,
		SelectedCardIDs: []string{"s-1"},
	})
	require.NoError(t, err)

	assert.Nil(t, out.PendingSelection)
	require.NotNil(t, out.Zones["p1"].SP)
	assert.Equal(t, "s-1", out.Zones["p1"].SP.CardID)
	assert.False(t, out.Zones["p1"].SP.FaceUp)
}

func TestGameRunsToCompletion(t *testing.T) {
	reg, err := card.LoadDefaultSet()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	// A single-round policy ends the game after the first battle.
	e := game.NewEngine(reg, store, game.Options{
		Scoring: rules.ScoringPolicy{
			WinningPoints:     50,
			MaxRounds:         1,
			RoundPoints:       []int{10},
			ComboBonus:        20,
			ReplenishHandSize: 4,
		},
		RedrawLimit: 1,
	}, zap.NewNop())
	ctx := context.Background()

	deck := []string{"c-1", "c-4", "c-13", "c-12", "c-3", "c-6"}
	_, err = e.NewGame(ctx, "g1",
		game.PlayerSetup{ID: "p1", Deck: deck, Leaders: []string{"l-trump"}},
		game.PlayerSetup{ID: "p2", Deck: deck, Leaders: []string{"l-lincoln"}},
		8,
	)
	require.NoError(t, err)

	act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})
	st := act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	st = ackAll(t, e, "g1", st)
	require.Equal(t, state.PhaseMain, st.Phase)

	st = act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	st = ackAll(t, e, "g1", st)
	st = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})
	require.Equal(t, state.PhaseSP, st.Phase)

	act(t, e, "g1", "p1", state.Action{Type: state.ActionPass})
	st = act(t, e, "g1", "p2", state.Action{Type: state.ActionPass})

	assert.Equal(t, state.PhaseGameOver, st.Phase)
	require.NotEmpty(t, st.Journal.Events)
	assert.Equal(t, journal.EventGameOver, st.Journal.Events[len(st.Journal.Events)-1].Type)

	// A finished game rejects further actions.
	_, err = e.ProcessAction(ctx, "g1", "p1", state.Action{Type: state.ActionPass})
	require.Error(t, err)
}
