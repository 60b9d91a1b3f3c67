package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/effects"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/rules"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
	"github.com/revrebgame/revreb-server-go/internal/repository"
)

// Options configures an engine.
type Options struct {
	Scoring     rules.ScoringPolicy
	RedrawLimit int
	Recorder    *Recorder
}

// DefaultOptions returns the published game rules with one redraw.
func DefaultOptions() Options {
	return Options{Scoring: rules.DefaultScoringPolicy(), RedrawLimit: 1}
}

// Engine processes player actions. Actions on the same game are strictly
// serialized through a per-game mutex; actions on different games run in
// parallel. Every accepted action either commits fully (state, journal and
// uuid rotation in one save) or leaves the last persisted state untouched.
type Engine struct {
	registry *card.Registry
	store    repository.Store
	resolver *effects.Resolver
	phases   *rules.PhaseEngine
	opts     Options
	logger   *zap.Logger

	locks sync.Map // gameID -> *sync.Mutex
}

// NewEngine assembles an engine over the given registry and store.
func NewEngine(reg *card.Registry, store repository.Store, opts Options, logger *zap.Logger) *Engine {
	if opts.RedrawLimit <= 0 {
		opts.RedrawLimit = 1
	}
	return &Engine{
		registry: reg,
		store:    store,
		resolver: effects.NewResolver(reg),
		phases:   rules.NewPhaseEngine(reg, opts.Scoring),
		opts:     opts,
		logger:   logger,
	}
}

func (e *Engine) lockFor(gameID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (e *Engine) load(ctx context.Context, gameID string) (*state.GameState, error) {
	st, err := e.store.Load(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
		}
		return nil, err
	}
	return st, nil
}

// ProcessAction consumes one player action and returns the committed state.
// Validation failures are returned as *rules.Failure alongside the state
// that now carries the corresponding ERROR event.
func (e *Engine) ProcessAction(ctx context.Context, gameID, playerID string, a state.Action) (*state.GameState, error) {
	mu := e.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	st, err := e.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if f := rules.Validate(e.registry, st, playerID, a); f != nil {
		st.Journal.Append(journal.EventError, map[string]any{
			"kind":     string(f.Kind),
			"message":  f.Message,
			"playerId": playerID,
		})
		st.RotateUUID()
		if err := e.store.Save(ctx, gameID, st); err != nil {
			return nil, fmt.Errorf("persist rejection: %w", err)
		}
		e.logger.Debug("action rejected",
			zap.String("game", gameID),
			zap.String("player", playerID),
			zap.String("kind", string(f.Kind)),
		)
		return st, f
	}

	entered, err := e.applyAction(st, playerID, a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	suspended, err := e.resolveLoop(st, entered)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !suspended {
		if err := e.phases.Advance(st, e.resolveDerived); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if st.Phase != state.PhaseGameOver {
			if err := e.resolveDerived(st, false); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInternal, err)
			}
		}
	}

	if err := checkInvariants(e.registry, st); err != nil {
		e.logger.Error("invariant violation, aborting action",
			zap.String("game", gameID),
			zap.String("player", playerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	st.RotateUUID()
	if err := e.store.Save(ctx, gameID, st); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	e.record(st)

	e.logger.Info("action processed",
		zap.String("game", gameID),
		zap.String("player", playerID),
		zap.String("action", string(a.Type)),
		zap.String("phase", string(st.Phase)),
		zap.Bool("suspended", suspended),
	)
	return st, nil
}

// AcknowledgeEvents marks journal entries acknowledged, truncates the
// acknowledged prefix, and advances out of the draw phase once its event
// has been seen.
func (e *Engine) AcknowledgeEvents(ctx context.Context, gameID string, ids []int64) (*state.GameState, error) {
	mu := e.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	st, err := e.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	st.Journal.Acknowledge(ids)
	// The phase check must see the acknowledged draw event, so truncation
	// comes after the advance.
	if e.phases.AdvanceAfterAck(st) {
		if err := e.resolveDerived(st, false); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}
	st.Journal.Truncate()

	st.RotateUUID()
	if err := e.store.Save(ctx, gameID, st); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	return st, nil
}

// QueryState returns the player-visible projection of the current state.
func (e *Engine) QueryState(ctx context.Context, gameID, playerID string) (*state.GameState, error) {
	mu := e.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	st, err := e.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	view, err := st.ProjectFor(playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return view, nil
}

// InjectState writes a provided document verbatim, recomputing derived
// state first. Test-only; the transport gates it behind configuration.
func (e *Engine) InjectState(ctx context.Context, gameID string, st *state.GameState) (*state.GameState, error) {
	mu := e.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	st.GameID = gameID
	if st.Journal.NextID == 0 {
		st.Journal.NextID = 1
	}
	if err := e.resolveDerived(st, false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if st.UpdateUUID == "" {
		st.RotateUUID()
	}
	if err := e.store.Save(ctx, gameID, st); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	return st, nil
}

// resolveDerived recomputes derived effects in place. It is also the
// ResolveFunc handed to the phase engine.
func (e *Engine) resolveDerived(st *state.GameState, inBattle bool) error {
	out, err := e.resolver.Resolve(st, effects.Input{InBattle: inBattle})
	if err != nil {
		return err
	}
	st.Derived = out.Derived
	return nil
}

// resolveLoop resolves derived state, applying any immediate triggered
// effects and re-resolving until quiescent. Returns true when a selection
// request suspended the action.
func (e *Engine) resolveLoop(st *state.GameState, entered *enteredCard) (bool, error) {
	in := effects.Input{}
	if entered != nil {
		in.EnteredCardID = entered.cardID
		in.EnteredOwner = entered.owner
	}
	for i := 0; i < 8; i++ {
		out, err := e.resolver.Resolve(st, in)
		if err != nil {
			return false, err
		}
		st.Derived = out.Derived

		if len(out.Immediates) > 0 {
			if err := e.applyImmediates(st, out.Immediates); err != nil {
				return false, err
			}
			if out.Selection != nil {
				// A trigger emitted immediates before asking for a choice.
				// They have been applied, so re-resolve to rebuild the
				// request against the mutated state; the re-emitted
				// immediates are ignored.
				again, err := e.resolver.Resolve(st, in)
				if err != nil {
					return false, err
				}
				st.Derived = again.Derived
				if again.Selection != nil {
					e.suspend(st, again.Selection)
					return true, nil
				}
			}
			// The one-shot trigger has been consumed; later passes see only
			// continuous rules.
			in = effects.Input{}
			continue
		}

		if out.Selection != nil {
			e.suspend(st, out.Selection)
			return true, nil
		}
		return false, nil
	}
	return false, fmt.Errorf("effect resolution did not converge")
}

func (e *Engine) record(st *state.GameState) {
	if e.opts.Recorder != nil {
		e.opts.Recorder.Record(st)
	}
}
