package flow

import (
	"time"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
)

// Cancellation is only honored by the hub for amounts it deliberately
// delays, giving the runner a window to land the transition.
const (
	cancelWindowMin = 90
	cancelWindowMax = 99
)

// TransactionContext is the immutable input bundle for one run
type TransactionContext struct {
	Currency        string
	Amount          int64
	MerchantRef     string
	AccountID       string
	Card            gateway.Card
	Profile         gateway.Profile
	Billing         gateway.BillingDetails
	ReturnLinks     []gateway.ReturnLink
	CustomerIP      string
	CancelRequested bool
	RefundRequested bool
}

// CancelEligible reports whether this transaction qualifies for a
// cancellation attempt at all.
func (t TransactionContext) CancelEligible() bool {
	return t.CancelRequested && t.Amount >= cancelWindowMin && t.Amount <= cancelWindowMax
}

// PaymentRecord tracks the payment through its lifecycle. It is owned
// and mutated exclusively by the orchestrator; concurrent collaborators
// only ever see value copies.
type PaymentRecord struct {
	ID             string
	State          State
	RemoteStatus   string
	SettlementRef  string
	LastObservedAt time.Time
	PollAttempts   int
}

// assignID sets the remote identifier exactly once
func (r *PaymentRecord) assignID(id string) {
	if r.ID == "" {
		r.ID = id
	}
}

// advance moves the record forward along the transition graph
func (r *PaymentRecord) advance(to State) error {
	if err := validateTransition(r.State, to); err != nil {
		return err
	}
	r.State = to
	return nil
}

// observe records one poll observation of the remote status
func (r *PaymentRecord) observe(status string) {
	r.RemoteStatus = status
	r.LastObservedAt = time.Now()
	r.PollAttempts++
}

// CancellationOutcome is the write-once result of the cancellation
// runner, reconciled by the orchestrator after the poll loop ends.
type CancellationOutcome struct {
	Attempted      bool
	Succeeded      bool
	ObservedStatus string
	Err            error
}

// RefundStatus is a terminal-or-pending state of the refund sub-flow
type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundCompleted RefundStatus = "COMPLETED"
	RefundFailed    RefundStatus = "FAILED"
	RefundTimedOut  RefundStatus = "TIMED_OUT"
)

// RefundRecord tracks the refund sub-flow, owned by the refund
// orchestrator.
type RefundRecord struct {
	ID           string
	Status       RefundStatus
	PollAttempts int
}

// Result is the overall outcome of one transaction run
type Result struct {
	Final        State
	Payment      *PaymentRecord
	Cancellation *CancellationOutcome
	Refund       *RefundRecord
}
