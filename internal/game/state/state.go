// Package state defines the game document: the complete, persistable state
// of one match. The document is plain data; every mutation happens through
// the engine, and cross-game aliasing is ruled out by whole-document
// cloning.
package state

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/journal"
)

// Phase names a state in the round's state machine.
type Phase string

const (
	PhaseStartRedraw Phase = "START_REDRAW"
	PhaseDraw        Phase = "DRAW_PHASE"
	PhaseMain        Phase = "MAIN_PHASE"
	PhaseSP          Phase = "SP_PHASE"
	PhaseBattle      Phase = "BATTLE_PHASE"
	PhaseEnd         Phase = "END_PHASE"
	PhaseGameOver    Phase = "GAME_OVER"
)

// Placement records a card's presence in a zone. Sequence is the play
// sequence id assigned when the card entered; it is the tie-breaker for
// every ordering decision downstream.
type Placement struct {
	CardID   string `json:"cardId"`
	FaceUp   bool   `json:"faceUp"`
	Sequence int    `json:"sequence"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// PlayerZones is one player's half of the board.
type PlayerZones struct {
	Leader *Placement  `json:"leader,omitempty"`
	Top    []Placement `json:"top,omitempty"`
	Left   []Placement `json:"left,omitempty"`
	Right  []Placement `json:"right,omitempty"`
	Help   *Placement  `json:"help,omitempty"`
	SP     *Placement  `json:"sp,omitempty"`
}

// Row returns the character row for one of the three character zones.
func (z *PlayerZones) Row(zone card.Zone) []Placement {
	switch zone {
	case card.ZoneTop:
		return z.Top
	case card.ZoneLeft:
		return z.Left
	case card.ZoneRight:
		return z.Right
	}
	return nil
}

// SetRow replaces the character row for one of the three character zones.
func (z *PlayerZones) SetRow(zone card.Zone, row []Placement) {
	switch zone {
	case card.ZoneTop:
		z.Top = row
	case card.ZoneLeft:
		z.Left = row
	case card.ZoneRight:
		z.Right = row
	}
}

// Slot returns the single-card slot for help, sp or leader.
func (z *PlayerZones) Slot(zone card.Zone) *Placement {
	switch zone {
	case card.ZoneHelp:
		return z.Help
	case card.ZoneSP:
		return z.SP
	case card.ZoneLeader:
		return z.Leader
	}
	return nil
}

// SetSlot fills the single-card slot for help, sp or leader.
func (z *PlayerZones) SetSlot(zone card.Zone, p *Placement) {
	switch zone {
	case card.ZoneHelp:
		z.Help = p
	case card.ZoneSP:
		z.SP = p
	case card.ZoneLeader:
		z.Leader = p
	}
}

// Placements returns every placement in the given field zone, in insertion
// order. Help and sp yield zero or one entry.
func (z *PlayerZones) Placements(zone card.Zone) []Placement {
	switch zone {
	case card.ZoneTop, card.ZoneLeft, card.ZoneRight:
		return z.Row(zone)
	case card.ZoneHelp, card.ZoneSP, card.ZoneLeader:
		if p := z.Slot(zone); p != nil {
			return []Placement{*p}
		}
	}
	return nil
}

// FieldCardIDs returns every card id on the field (leader excluded).
func (z *PlayerZones) FieldCardIDs() []string {
	var ids []string
	for _, zone := range card.FieldZones() {
		for _, p := range z.Placements(zone) {
			ids = append(ids, p.CardID)
		}
	}
	return ids
}

// GameTypeAll is the sentinel restriction entry meaning any game type may be
// played in the zone.
const GameTypeAll = "ALL"

// SpecialFlags carries board-wide restrictions imposed on a player by
// opposing effects.
type SpecialFlags struct {
	ZonePlacementFreedom bool               `json:"zonePlacementFreedom,omitempty"`
	ForceSPPlay          bool               `json:"forceSPPlay,omitempty"`
	PreventPlay          map[card.Zone]bool `json:"preventPlay,omitempty"`
}

// DerivedEffects is one player's computed state. It is regenerated from
// scratch by the resolver after every mutation, never patched in place.
type DerivedEffects struct {
	ZoneRestrictions      map[card.Zone][]string `json:"zoneRestrictions"`
	CalculatedPowers      map[string]int         `json:"calculatedPowers"`
	DisabledCards         map[string]bool        `json:"disabledCards,omitempty"`
	ComboBonusDisabled    bool                   `json:"comboBonusDisabled,omitempty"`
	VictoryPointModifiers int                    `json:"victoryPointModifiers,omitempty"`
	TotalPowerModifier    int                    `json:"totalPowerModifier,omitempty"`
	SpecialFlags          SpecialFlags           `json:"specialFlags,omitempty"`
}

// NewDerivedEffects returns an empty derived-effects record with allocated
// maps.
func NewDerivedEffects() *DerivedEffects {
	return &DerivedEffects{
		ZoneRestrictions: make(map[card.Zone][]string),
		CalculatedPowers: make(map[string]int),
		DisabledCards:    make(map[string]bool),
	}
}

// ZoneAllows reports whether the restriction on a zone admits the given game
// type.
func (d *DerivedEffects) ZoneAllows(zone card.Zone, gameType string) bool {
	allowed, ok := d.ZoneRestrictions[zone]
	if !ok {
		return true
	}
	for _, gt := range allowed {
		if gt == GameTypeAll || gt == gameType {
			return true
		}
	}
	return false
}

// SelectionKind classifies an outstanding player choice.
type SelectionKind string

const (
	SelectionDeckSearch  SelectionKind = "deckSearch"
	SelectionFieldTarget SelectionKind = "fieldTarget"
	SelectionSingle      SelectionKind = "singleTarget"
)

// SelectionContext carries everything needed to finish a suspended effect
// once the player has chosen.
type SelectionContext struct {
	SourceCardID string          `json:"sourceCardId"`
	SourceOwner  string          `json:"sourceOwner"`
	Effect       card.EffectKind `json:"effect"`
	Amount       int             `json:"amount,omitempty"`
	Destination  card.Zone       `json:"destination,omitempty"`
	// SearchedCards holds the cards lifted off the top of the deck for a
	// deck search. Unselected ones go back to the deck bottom in this
	// order.
	SearchedCards []string `json:"searchedCards,omitempty"`
}

// PendingSelection is the suspension record: a card play paused until the
// named player submits a matching SelectCard action. At most one exists per
// game.
type PendingSelection struct {
	SelectionID   string           `json:"selectionId"`
	PlayerID      string           `json:"playerId"`
	Kind          SelectionKind    `json:"kind"`
	SelectCount   int              `json:"selectCount"`
	EligibleCards []string         `json:"eligibleCards"`
	Context       SelectionContext `json:"context"`
}

// PlayActionKind names the recorded form of a play.
type PlayActionKind string

const (
	PlayActionCard     PlayActionKind = "PLAY_CARD"
	PlayActionCardBack PlayActionKind = "PLAY_CARD_BACK"
	PlayActionLeader   PlayActionKind = "PLAY_LEADER"
	PlayActionPass     PlayActionKind = "PASS"
)

// PlayRecord is one entry in the play sequence.
type PlayRecord struct {
	SequenceID int            `json:"sequenceId"`
	PlayerID   string         `json:"playerId"`
	CardID     string         `json:"cardId,omitempty"`
	Zone       card.Zone      `json:"zone,omitempty"`
	Action     PlayActionKind `json:"action"`
	FaceDown   bool           `json:"faceDown,omitempty"`
}

// PlaySequence is the totally ordered record of plays for the whole game.
type PlaySequence struct {
	GlobalSequence int          `json:"globalSequence"`
	Plays          []PlayRecord `json:"plays,omitempty"`
}

// Record appends a play, assigns the next sequence id and returns it.
func (ps *PlaySequence) Record(rec PlayRecord) int {
	ps.GlobalSequence++
	rec.SequenceID = ps.GlobalSequence
	ps.Plays = append(ps.Plays, rec)
	return rec.SequenceID
}

// AppliedModifier is a selection-applied targeted effect. It is primary
// state: derived powers are recomputed wholesale on every resolve, so a
// targeted setPower or boost must be replayed from here rather than patched
// into the derived maps once.
type AppliedModifier struct {
	SourceCardID string          `json:"sourceCardId"`
	TargetCardID string          `json:"targetCardId"`
	TargetOwner  string          `json:"targetOwner"`
	Effect       card.EffectKind `json:"effect"`
	Amount       int             `json:"amount"`
	Sequence     int             `json:"sequence"`
}

// PlayerState is one player's private and scoring state.
type PlayerState struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Hand             []string `json:"hand"`
	MainDeck         []string `json:"mainDeck"`
	LeaderSequence   []string `json:"leaderSequence"`
	CurrentLeaderIdx int      `json:"currentLeaderIdx"`
	IsReady          bool     `json:"isReady"`
	RedrawsRemaining int      `json:"redrawsRemaining"`
	PlayerPoint      int      `json:"playerPoint"`

	// HandCount and DeckCount are filled in on projections where the
	// underlying slices have been redacted.
	HandCount int `json:"handCount,omitempty"`
	DeckCount int `json:"deckCount,omitempty"`
}

// GameState is the complete persisted document for one game.
type GameState struct {
	GameID        string `json:"gameId"`
	Phase         Phase  `json:"phase"`
	Round         int    `json:"round"`
	CurrentTurn   int    `json:"currentTurn"`
	FirstPlayer   string `json:"firstPlayer"`
	CurrentPlayer string `json:"currentPlayer"`
	GameStarted   bool   `json:"gameStarted"`

	PlayerOrder []string                   `json:"playerOrder"`
	Players     map[string]*PlayerState    `json:"players"`
	Zones       map[string]*PlayerZones    `json:"zones"`
	Derived     map[string]*DerivedEffects `json:"derivedEffects"`

	PendingSelection *PendingSelection `json:"pendingSelection,omitempty"`
	Journal          journal.Journal   `json:"eventJournal"`
	PlaySequence     PlaySequence      `json:"playSequence"`
	AppliedModifiers []AppliedModifier `json:"appliedModifiers,omitempty"`

	// RandSeed drives every random effect so replays are reproducible.
	RandSeed   int64  `json:"randSeed"`
	UpdateUUID string `json:"updateUuid"`
}

// Player returns the player record for an id, or nil.
func (s *GameState) Player(id string) *PlayerState {
	return s.Players[id]
}

// ZonesOf returns the board half for a player id, or nil.
func (s *GameState) ZonesOf(id string) *PlayerZones {
	return s.Zones[id]
}

// DerivedOf returns the derived effects for a player id, allocating an empty
// record if none exists yet.
func (s *GameState) DerivedOf(id string) *DerivedEffects {
	if s.Derived == nil {
		s.Derived = make(map[string]*DerivedEffects)
	}
	d, ok := s.Derived[id]
	if !ok {
		d = NewDerivedEffects()
		s.Derived[id] = d
	}
	return d
}

// Opponent returns the other player's id.
func (s *GameState) Opponent(id string) string {
	for _, pid := range s.PlayerOrder {
		if pid != id {
			return pid
		}
	}
	return ""
}

// ScanOrder returns player ids with the current player first. This is the
// owner order used for deterministic rule collection.
func (s *GameState) ScanOrder() []string {
	if s.CurrentPlayer == "" {
		return append([]string(nil), s.PlayerOrder...)
	}
	return []string{s.CurrentPlayer, s.Opponent(s.CurrentPlayer)}
}

// CurrentLeaderID returns the active leader card id for a player, or "".
func (s *GameState) CurrentLeaderID(id string) string {
	p := s.Player(id)
	if p == nil || p.CurrentLeaderIdx >= len(p.LeaderSequence) {
		return ""
	}
	return p.LeaderSequence[p.CurrentLeaderIdx]
}

// RotateUUID assigns a fresh update token. Called on every mutation,
// including rejected actions that record an error event.
func (s *GameState) RotateUUID() {
	s.UpdateUUID = uuid.NewString()
}

// Clone returns a deep copy of the document via a JSON round-trip. Two games
// (or one game across two actions) never share mutable substructure.
func (s *GameState) Clone() (*GameState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}
	var out GameState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}
	return &out, nil
}

// NextSeed advances the document's PRNG seed using a splitmix64 step and
// returns a value to feed a rand source. The stepped seed is stored back so
// a replay of the same action sequence reproduces every random outcome.
func (s *GameState) NextSeed() int64 {
	z := uint64(s.RandSeed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	s.RandSeed = int64(z)
	return int64(z)
}
