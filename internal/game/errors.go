// Package game implements the action processor: the single entry point that
// validates an action, mutates the game document, drives effect resolution
// and phase transitions, and commits the result atomically.
package game

import "errors"

// ErrUnknownGame is returned when no document exists for the requested id.
var ErrUnknownGame = errors.New("unknown game")

// ErrInternal marks a bug or invariant violation. The action is aborted and
// the last persisted state stands.
var ErrInternal = errors.New("internal error")
