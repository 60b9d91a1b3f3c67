// Package rules implements action admissibility (the validator) and the
// round/phase state machine (the phase engine).
package rules

import "fmt"

// FailureKind is the machine-readable category of a rejected action.
type FailureKind string

const (
	FailNotYourTurn        FailureKind = "NotYourTurn"
	FailWrongPhase         FailureKind = "WrongPhase"
	FailInvalidHandIndex   FailureKind = "InvalidHandIndex"
	FailZoneCompatibility  FailureKind = "ZoneCompatibility"
	FailZoneOccupied       FailureKind = "ZoneOccupied"
	FailInvalidZone        FailureKind = "InvalidZone"
	FailInvalidSelection   FailureKind = "InvalidSelection"
	FailNoPendingSelection FailureKind = "NoPendingSelection"
	FailForbidden          FailureKind = "Forbidden"
)

// Failure is a validation rejection. The action is refused without mutating
// anything except the error event on the journal.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func failf(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
