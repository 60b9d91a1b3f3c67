package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

func replayState(gameID string, phase state.Phase) *state.GameState {
	return &state.GameState{
		GameID:      gameID,
		Phase:       phase,
		Round:       1,
		PlayerOrder: []string{"p1", "p2"},
		Players: map[string]*state.PlayerState{
			"p1": {ID: "p1", Hand: []string{"c-1"}},
			"p2": {ID: "p2"},
		},
		Zones: map[string]*state.PlayerZones{
			"p1": {},
			"p2": {},
		},
		Journal: journal.New(),
	}
}

func TestRecorderAccumulatesSnapshots(t *testing.T) {
	rec := NewRecorder(t.TempDir(), zap.NewNop())

	st := replayState("g1", state.PhaseMain)
	rec.Record(st)
	st.Round = 2
	rec.Record(st)

	snaps := rec.Snapshots("g1")
	require.Len(t, snaps, 2)
	// Snapshots are copies: the first one kept round 1.
	assert.Equal(t, 1, snaps[0].State.Round)
	assert.Equal(t, 2, snaps[1].State.Round)
	assert.Equal(t, snaps[1].State.Checksum(), snaps[1].Checksum)
}

func TestRecorderFlushRoundTrips(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir, zap.NewNop())

	rec.Record(replayState("g1", state.PhaseMain))
	rec.Record(replayState("g1", state.PhaseSP))
	require.NoError(t, rec.Flush("g1"))

	// Flushed snapshots leave memory.
	assert.Empty(t, rec.Snapshots("g1"))

	_, err := os.Stat(filepath.Join(dir, "g1.replay.json.gz"))
	require.NoError(t, err)

	snaps, err := LoadReplay(dir, "g1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, state.PhaseMain, snaps[0].State.Phase)
	assert.Equal(t, snaps[0].State.Checksum(), snaps[0].Checksum)
}

func TestRecorderFlushesOnGameOver(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir, zap.NewNop())

	rec.Record(replayState("g1", state.PhaseMain))
	rec.Record(replayState("g1", state.PhaseGameOver))

	_, err := os.Stat(filepath.Join(dir, "g1.replay.json.gz"))
	require.NoError(t, err)
	assert.Empty(t, rec.Snapshots("g1"))
}

func TestRecorderFlushWithoutSnapshotsIsNoOp(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir, zap.NewNop())

	require.NoError(t, rec.Flush("never-seen"))
	_, err := os.Stat(filepath.Join(dir, "never-seen.replay.json.gz"))
	assert.True(t, os.IsNotExist(err))
}
