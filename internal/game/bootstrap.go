package game

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// PlayerSetup describes one player's starting configuration.
type PlayerSetup struct {
	ID      string
	Name    string
	Deck    []string
	Leaders []string
}

// NewGame builds and persists a fresh game document in the redraw phase:
// decks shuffled from the given seed, opening hands dealt, first leaders on
// the field.
func (e *Engine) NewGame(ctx context.Context, gameID string, p1, p2 PlayerSetup, seed int64) (*state.GameState, error) {
	mu := e.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	for _, setup := range []PlayerSetup{p1, p2} {
		if setup.ID == "" {
			return nil, fmt.Errorf("player id must not be empty")
		}
		if len(setup.Leaders) == 0 {
			return nil, fmt.Errorf("player %q has no leaders", setup.ID)
		}
		for _, id := range append(append([]string(nil), setup.Deck...), setup.Leaders...) {
			if _, err := e.registry.Lookup(id); err != nil {
				return nil, fmt.Errorf("player %q: %w", setup.ID, err)
			}
		}
	}
	if p1.ID == p2.ID {
		return nil, fmt.Errorf("players must be distinct, got %q twice", p1.ID)
	}

	st := &state.GameState{
		GameID:      gameID,
		Phase:       state.PhaseStartRedraw,
		Round:       1,
		FirstPlayer: p1.ID,
		PlayerOrder: []string{p1.ID, p2.ID},
		Players:     make(map[string]*state.PlayerState, 2),
		Zones:       make(map[string]*state.PlayerZones, 2),
		Derived:     make(map[string]*state.DerivedEffects, 2),
		Journal:     journal.Journal{NextID: 1},
		RandSeed:    seed,
	}

	hand := e.opts.Scoring.ReplenishHandSize
	for _, setup := range []PlayerSetup{p1, p2} {
		deck := append([]string(nil), setup.Deck...)
		rng := rand.New(rand.NewSource(st.NextSeed()))
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

		n := hand
		if n > len(deck) {
			n = len(deck)
		}
		st.Players[setup.ID] = &state.PlayerState{
			ID:               setup.ID,
			Name:             setup.Name,
			Hand:             deck[:n],
			MainDeck:         deck[n:],
			LeaderSequence:   append([]string(nil), setup.Leaders...),
			RedrawsRemaining: e.opts.RedrawLimit,
		}
		st.PlaySequence.GlobalSequence++
		st.Zones[setup.ID] = &state.PlayerZones{
			Leader: &state.Placement{
				CardID:   setup.Leaders[0],
				FaceUp:   true,
				Sequence: st.PlaySequence.GlobalSequence,
			},
		}
	}

	if err := e.resolveDerived(st, false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	st.RotateUUID()
	if err := e.store.Save(ctx, gameID, st); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	e.logger.Info("game created",
		zap.String("game", gameID),
		zap.Strings("players", []string{p1.ID, p2.ID}),
	)
	return st, nil
}
