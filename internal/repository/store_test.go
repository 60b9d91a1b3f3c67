package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

func sampleState() *state.GameState {
	st := &state.GameState{
		GameID:        "g1",
		Phase:         state.PhaseMain,
		Round:         2,
		FirstPlayer:   "p1",
		CurrentPlayer: "p2",
		PlayerOrder:   []string{"p1", "p2"},
		Players: map[string]*state.PlayerState{
			"p1": {ID: "p1", Hand: []string{"c-1"}, MainDeck: []string{"c-4"}, PlayerPoint: 10},
			"p2": {ID: "p2", Hand: []string{"c-12"}},
		},
		Zones: map[string]*state.PlayerZones{
			"p1": {Top: []state.Placement{{CardID: "c-13", FaceUp: true, Sequence: 1}}},
			"p2": {},
		},
		Journal:  journal.New(),
		RandSeed: 7,
	}
	st.Journal.Append(journal.EventCardPlayed, map[string]any{"cardId": "c-13"})
	st.RotateUUID()
	return st
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			st := sampleState()
			require.NoError(t, store.Save(ctx, "g1", st))

			got, err := store.Load(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, st.Checksum(), got.Checksum())
			assert.Equal(t, st.UpdateUUID, got.UpdateUUID)
			assert.Equal(t, int64(2), got.Journal.NextID)
		})
	}
}

func TestStoreLoadUnknown(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "g1", sampleState()))
			require.NoError(t, store.Delete(ctx, "g1"))

			_, err := store.Load(ctx, "g1")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			st := sampleState()
			require.NoError(t, store.Save(ctx, "g1", st))

			st.Round = 3
			st.RotateUUID()
			require.NoError(t, store.Save(ctx, "g1", st))

			got, err := store.Load(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, 3, got.Round)
		})
	}
}

func TestMemoryStoreCopiesOnLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "g1", sampleState()))

	a, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	a.Players["p1"].PlayerPoint = 99

	b, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 10, b.Players["p1"].PlayerPoint)
}
