package rules

import (
	"fmt"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// ResolveFunc recomputes st.Derived from primary state. The phase engine
// calls it when entering battle so finalCalculation effects are in force
// before totals are read.
type ResolveFunc func(st *state.GameState, inBattle bool) error

// PhaseEngine drives the round state machine. Transitions are total: every
// phase has a defined successor for every accepted action.
type PhaseEngine struct {
	reg     *card.Registry
	scoring ScoringPolicy
}

// NewPhaseEngine returns a phase engine using the given scoring policy.
func NewPhaseEngine(reg *card.Registry, scoring ScoringPolicy) *PhaseEngine {
	return &PhaseEngine{reg: reg, scoring: scoring}
}

// PlacementMinimaMet reports whether the player has filled all three
// character zones and the help slot, the condition that completes their
// main phase without an explicit pass.
func (pe *PhaseEngine) PlacementMinimaMet(st *state.GameState, playerID string) bool {
	z := st.ZonesOf(playerID)
	if z == nil {
		return false
	}
	return len(z.Top) > 0 && len(z.Left) > 0 && len(z.Right) > 0 && z.Help != nil
}

// Advance runs the state machine after an accepted, fully applied action.
// The acting player's readiness has already been recorded by the caller for
// passes; Advance adds readiness earned through placement minima, hands
// control across, and performs the atomic battle/end-of-round processing.
func (pe *PhaseEngine) Advance(st *state.GameState, resolve ResolveFunc) error {
	switch st.Phase {
	case state.PhaseStartRedraw:
		if pe.bothReady(st) {
			st.GameStarted = true
			pe.resetReady(st)
			st.CurrentPlayer = st.FirstPlayer
			pe.enterDraw(st)
		}
		return nil

	case state.PhaseMain:
		actor := st.CurrentPlayer
		opponent := st.Opponent(actor)
		if pe.PlacementMinimaMet(st, actor) {
			st.Player(actor).IsReady = true
		}
		switch {
		case st.Player(actor).IsReady && st.Player(opponent).IsReady:
			pe.enterSP(st)
		case !st.Player(opponent).IsReady:
			// Control ping-pongs between the players; the arriving
			// player gets a draw phase on every handover.
			st.CurrentTurn++
			st.CurrentPlayer = opponent
			pe.enterDraw(st)
		}
		// Opponent done, actor not: the actor keeps acting.
		return nil

	case state.PhaseSP:
		actor := st.CurrentPlayer
		opponent := st.Opponent(actor)
		st.Player(actor).IsReady = true
		if st.Player(opponent).IsReady {
			return pe.resolveBattle(st, resolve)
		}
		st.CurrentTurn++
		st.CurrentPlayer = opponent
		return nil
	}
	return nil
}

// AdvanceAfterAck moves DRAW_PHASE to MAIN_PHASE once the viewer has
// acknowledged the draw event. Returns true when the phase changed.
func (pe *PhaseEngine) AdvanceAfterAck(st *state.GameState) bool {
	if st.Phase != state.PhaseDraw {
		return false
	}
	lastDrawID := int64(-1)
	for _, ev := range st.Journal.Events {
		if ev.Type == journal.EventDrawPhaseComplete {
			lastDrawID = ev.ID
		}
	}
	if lastDrawID < 0 || !st.Journal.IsAcknowledged(lastDrawID) {
		return false
	}
	st.Phase = state.PhaseMain
	st.Journal.Append(journal.EventPhaseChanged, map[string]any{
		"phase":         string(state.PhaseMain),
		"currentPlayer": st.CurrentPlayer,
	})
	return true
}

// enterDraw resolves the draw phase atomically on entry: the arriving
// player draws the top card and the draw event is journaled. The phase
// advances to main only when that event is acknowledged.
func (pe *PhaseEngine) enterDraw(st *state.GameState) {
	st.Phase = state.PhaseDraw
	p := st.Player(st.CurrentPlayer)
	drew := ""
	if len(p.MainDeck) > 0 {
		drew = p.MainDeck[0]
		p.MainDeck = p.MainDeck[1:]
		p.Hand = append(p.Hand, drew)
	}
	st.Journal.Append(journal.EventDrawPhaseComplete, map[string]any{
		"playerId": st.CurrentPlayer,
		"drew":     drew != "",
		"handSize": len(p.Hand),
	})
}

func (pe *PhaseEngine) enterSP(st *state.GameState) {
	st.Phase = state.PhaseSP
	pe.resetReady(st)
	st.CurrentPlayer = st.FirstPlayer
	st.Journal.Append(journal.EventPhaseChanged, map[string]any{
		"phase":         string(state.PhaseSP),
		"currentPlayer": st.CurrentPlayer,
	})
}

// resolveBattle performs battle scoring and end-of-round processing in one
// atomic step, finishing in either the next round's draw phase or game
// over.
func (pe *PhaseEngine) resolveBattle(st *state.GameState, resolve ResolveFunc) error {
	st.Phase = state.PhaseBattle
	if err := resolve(st, true); err != nil {
		return fmt.Errorf("battle resolve: %w", err)
	}

	totals := make(map[string]int, len(st.PlayerOrder))
	for _, pid := range st.PlayerOrder {
		totals[pid] = pe.battleTotal(st, pid)
	}

	winner := ""
	best := -1
	tied := false
	for _, pid := range st.PlayerOrder {
		switch {
		case totals[pid] > best:
			winner, best, tied = pid, totals[pid], false
		case totals[pid] == best:
			tied = true
		}
	}
	awarded := 0
	if !tied && winner != "" {
		awarded = pe.scoring.roundAward(st.Round) + st.DerivedOf(winner).VictoryPointModifiers
		if awarded < 0 {
			awarded = 0
		}
		st.Player(winner).PlayerPoint += awarded
	}

	payload := map[string]any{
		"round":   st.Round,
		"awarded": awarded,
	}
	for pid, total := range totals {
		payload["total:"+pid] = total
	}
	if !tied {
		payload["winner"] = winner
	}
	st.Journal.Append(journal.EventRoundComplete, payload)

	return pe.finishRound(st, resolve)
}

// finishRound is the END_PHASE: clear the board, rotate leaders, replenish
// hands, then either start the next round's draw phase or end the game.
func (pe *PhaseEngine) finishRound(st *state.GameState, resolve ResolveFunc) error {
	st.Phase = state.PhaseEnd

	var discarded []string
	for _, pid := range st.PlayerOrder {
		z := st.ZonesOf(pid)
		if z == nil {
			continue
		}
		for _, zone := range card.FieldZones() {
			for _, p := range z.Placements(zone) {
				discarded = append(discarded, p.CardID)
			}
		}
		z.Top, z.Left, z.Right, z.Help, z.SP = nil, nil, nil, nil, nil
	}
	st.AppliedModifiers = nil
	if len(discarded) > 0 {
		st.Journal.Append(journal.EventCardsDiscarded, map[string]any{"cardIds": discarded})
	}

	st.Round++
	for _, pid := range st.PlayerOrder {
		p := st.Player(pid)
		if p.CurrentLeaderIdx < len(p.LeaderSequence)-1 {
			p.CurrentLeaderIdx++
		}
		if z := st.ZonesOf(pid); z != nil {
			if next := st.CurrentLeaderID(pid); next != "" {
				z.Leader = &state.Placement{CardID: next, FaceUp: true}
			}
		}
		for len(p.Hand) < pe.scoring.ReplenishHandSize && len(p.MainDeck) > 0 {
			p.Hand = append(p.Hand, p.MainDeck[0])
			p.MainDeck = p.MainDeck[1:]
		}
		p.IsReady = false
	}

	if pe.gameDecided(st) {
		st.Phase = state.PhaseGameOver
		st.Journal.Append(journal.EventGameOver, map[string]any{
			"winner": pe.leadingPlayer(st),
			"rounds": st.Round - 1,
		})
		return nil
	}

	st.CurrentPlayer = st.FirstPlayer
	pe.enterDraw(st)
	return resolve(st, false)
}

func (pe *PhaseEngine) gameDecided(st *state.GameState) bool {
	if st.Round > pe.scoring.MaxRounds {
		return true
	}
	for _, pid := range st.PlayerOrder {
		if st.Player(pid).PlayerPoint >= pe.scoring.WinningPoints {
			return true
		}
	}
	return false
}

// leadingPlayer returns the player with the most points, or "" on a tie.
func (pe *PhaseEngine) leadingPlayer(st *state.GameState) string {
	winner := ""
	best := -1
	tied := false
	for _, pid := range st.PlayerOrder {
		pts := st.Player(pid).PlayerPoint
		switch {
		case pts > best:
			winner, best, tied = pid, pts, false
		case pts == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return winner
}

func (pe *PhaseEngine) bothReady(st *state.GameState) bool {
	for _, pid := range st.PlayerOrder {
		if !st.Player(pid).IsReady {
			return false
		}
	}
	return true
}

func (pe *PhaseEngine) resetReady(st *state.GameState) {
	for _, pid := range st.PlayerOrder {
		st.Player(pid).IsReady = false
	}
}
