// Package flow drives a single card payment through the hub's
// transaction lifecycle: health check, method discovery, handle
// creation, payment submission, completion polling, and the optional
// cancellation and refund sub-flows.
package flow

import "fmt"

// State is a lifecycle state of the transaction
type State string

const (
	StateInit             State = "INIT"
	StateHealthChecked    State = "HEALTH_CHECKED"
	StateMethodsListed    State = "METHODS_LISTED"
	StateHandleCreated    State = "HANDLE_CREATED"
	StatePaymentSubmitted State = "PAYMENT_SUBMITTED"
	StatePolling          State = "POLLING"
	StateCompleted        State = "COMPLETED"
	StateFailed           State = "FAILED"
	StateCancelled        State = "CANCELLED"
	StateTimedOut         State = "TIMED_OUT"
)

// allowedTransitions is the forward-only transition graph. The key is
// the current state, the value the set of valid targets. Every
// non-terminal state may fail.
var allowedTransitions = map[State][]State{
	StateInit:             {StateHealthChecked, StateFailed},
	StateHealthChecked:    {StateMethodsListed, StateFailed},
	StateMethodsListed:    {StateHandleCreated, StateFailed},
	StateHandleCreated:    {StatePaymentSubmitted, StateFailed},
	StatePaymentSubmitted: {StatePolling, StateFailed},
	StatePolling:          {StateCompleted, StateFailed, StateCancelled, StateTimedOut},
	StateCompleted:        {},
	StateFailed:           {},
	StateCancelled:        {},
	StateTimedOut:         {},
}

// Terminal reports whether no further transitions exist from s
func (s State) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransition checks if moving from one state to another is allowed
func CanTransition(from, to State) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func validateTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	return nil
}

// remote payment statuses reported by the hub
const (
	remoteCompleted = "COMPLETED"
	remoteFailed    = "FAILED"
	remoteCancelled = "CANCELLED"
)

// terminalRemoteStatus maps a terminal hub status onto a lifecycle
// state; ok is false while the remote payment is still in flight.
func terminalRemoteStatus(status string) (State, bool) {
	switch status {
	case remoteCompleted:
		return StateCompleted, true
	case remoteFailed:
		return StateFailed, true
	case remoteCancelled:
		return StateCancelled, true
	}
	return "", false
}
