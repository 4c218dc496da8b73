// Package report consumes lifecycle events for display. Reporters must
// stay cheap: the orchestrator emits from its hot path.
package report

import "time"

type EventType string

const (
	EventStateEntered  EventType = "state_entered"
	EventMethodsListed EventType = "methods_listed"
	EventPollAttempt   EventType = "poll_attempt"
	EventCancelResult  EventType = "cancel_result"
	EventRefundUpdate  EventType = "refund_update"
	EventFinalOutcome  EventType = "final_outcome"
)

// Event is one lifecycle transition observed by the core
type Event struct {
	Type    EventType
	State   string
	Detail  string
	Methods []string
	Attempt int
	At      time.Time
}

// Reporter consumes lifecycle events
type Reporter interface {
	Emit(Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Emit(Event) {}
