// Package journal implements the append-only event log embedded in every
// game document. Viewers poll the journal and acknowledge what they have
// rendered; acknowledgement is the only trigger for truncation.
package journal

// EventType identifies an observable state change.
type EventType string

const (
	EventCardPlayed           EventType = "CARD_PLAYED"
	EventCardMovedToHand      EventType = "CARD_MOVED_TO_HAND"
	EventCardMovedToSPZone    EventType = "CARD_MOVED_TO_SP_ZONE"
	EventCardMovedToHelpZone  EventType = "CARD_MOVED_TO_HELP_ZONE"
	EventSelectionCompleted   EventType = "CARD_SELECTION_COMPLETED"
	EventPendingSelection     EventType = "PENDING_SELECTION"
	EventDrawPhaseComplete    EventType = "DRAW_PHASE_COMPLETE"
	EventPhaseChanged         EventType = "PHASE_CHANGED"
	EventRoundComplete        EventType = "ROUND_COMPLETE"
	EventCardsDiscarded       EventType = "CARDS_DISCARDED"
	EventHandRedrawn          EventType = "HAND_REDRAWN"
	EventGameOver             EventType = "GAME_OVER"
	EventError                EventType = "ERROR"
)

// Event is a single journal entry. IDs are assigned by the journal and are
// strictly increasing for the life of the game.
type Event struct {
	ID           int64          `json:"id"`
	Type         EventType      `json:"type"`
	Payload      map[string]any `json:"payload,omitempty"`
	Acknowledged bool           `json:"acknowledged"`
}

// Journal is the ordered event log. It lives inside the game document and is
// persisted with it, so it carries no synchronization of its own; the action
// that owns the document owns the journal.
type Journal struct {
	NextID int64   `json:"nextId"`
	Events []Event `json:"events"`
}

// New returns an empty journal whose first event will receive id 1.
func New() Journal {
	return Journal{NextID: 1}
}

// Append adds an event with the next monotonic id and returns it.
func (j *Journal) Append(t EventType, payload map[string]any) Event {
	if j.NextID == 0 {
		j.NextID = 1
	}
	ev := Event{ID: j.NextID, Type: t, Payload: payload}
	j.NextID++
	j.Events = append(j.Events, ev)
	return ev
}

// Acknowledge marks the given event ids acknowledged. Unknown ids are
// ignored, and acknowledging twice is a no-op, so the operation is idempotent.
func (j *Journal) Acknowledge(ids []int64) {
	if len(ids) == 0 {
		return
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	for i := range j.Events {
		if wanted[j.Events[i].ID] {
			j.Events[i].Acknowledged = true
		}
	}
}

// IsAcknowledged reports whether the event with the given id exists and has
// been acknowledged.
func (j *Journal) IsAcknowledged(id int64) bool {
	for i := range j.Events {
		if j.Events[i].ID == id {
			return j.Events[i].Acknowledged
		}
	}
	return false
}

// Truncate drops acknowledged events older than the oldest unacknowledged
// one. Order of the survivors is untouched; an unacknowledged event is never
// removed.
func (j *Journal) Truncate() {
	oldestUnacked := int64(-1)
	for i := range j.Events {
		if !j.Events[i].Acknowledged {
			oldestUnacked = j.Events[i].ID
			break
		}
	}
	kept := j.Events[:0]
	for _, ev := range j.Events {
		if oldestUnacked >= 0 && ev.ID >= oldestUnacked {
			kept = append(kept, ev)
			continue
		}
		if !ev.Acknowledged {
			kept = append(kept, ev)
		}
	}
	j.Events = kept
}

// Since returns the suffix of events with id strictly greater than afterID.
func (j *Journal) Since(afterID int64) []Event {
	for i := range j.Events {
		if j.Events[i].ID > afterID {
			out := make([]Event, len(j.Events)-i)
			copy(out, j.Events[i:])
			return out
		}
	}
	return nil
}

// Unacknowledged returns all events not yet acknowledged, in order.
func (j *Journal) Unacknowledged() []Event {
	var out []Event
	for _, ev := range j.Events {
		if !ev.Acknowledged {
			out = append(out, ev)
		}
	}
	return out
}
