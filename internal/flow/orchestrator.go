package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
)

// Gateway is the slice of the hub client the core needs
type Gateway interface {
	Monitor(ctx context.Context) (*gateway.MonitorStatus, error)
	PaymentMethods(ctx context.Context, currency string) ([]gateway.PaymentMethod, error)
	CreateHandle(ctx context.Context, req gateway.HandleRequest) (*gateway.Handle, error)
	CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.Payment, error)
	GetPayment(ctx context.Context, id string) (*gateway.Payment, error)
	CancelPayment(ctx context.Context, id string) (*gateway.Payment, error)
	CreateRefund(ctx context.Context, settlementID string, req gateway.RefundRequest) (*gateway.Refund, error)
	GetRefund(ctx context.Context, id string) (*gateway.Refund, error)
}

// Settings bounds the poll loops and the reconciliation wait
type Settings struct {
	PollInterval       time.Duration
	MaxPollAttempts    int
	RefundPollInterval time.Duration
	MaxRefundAttempts  int
	ReconcileWait      time.Duration
}

// DefaultSettings matches the hub's processing delays: ten 2s poll
// attempts for payments and refunds, 5s grace for a pending cancel.
func DefaultSettings() Settings {
	return Settings{
		PollInterval:       2 * time.Second,
		MaxPollAttempts:    10,
		RefundPollInterval: 2 * time.Second,
		MaxRefundAttempts:  10,
		ReconcileWait:      5 * time.Second,
	}
}

// Orchestrator drives the main lifecycle state machine. It is the sole
// writer of the PaymentRecord.
type Orchestrator struct {
	Gateway  Gateway
	Reporter report.Reporter
	Settings Settings
}

func NewOrchestrator(gw Gateway, rep report.Reporter, s Settings) *Orchestrator {
	return &Orchestrator{Gateway: gw, Reporter: rep, Settings: s}
}

// Run advances txn through the full lifecycle and returns the final
// result. A non-nil error means the run aborted before the payment was
// submitted; afterwards every outcome, including TIMED_OUT, is normal.
func (o *Orchestrator) Run(ctx context.Context, txn TransactionContext) (*Result, error) {
	rec := &PaymentRecord{State: StateInit}
	res := &Result{Payment: rec}

	if err := o.checkHealth(ctx, rec); err != nil {
		res.Final = rec.State
		return res, err
	}
	if err := o.discoverMethods(ctx, txn, rec); err != nil {
		res.Final = rec.State
		return res, err
	}
	handle, err := o.createHandle(ctx, txn, rec)
	if err != nil {
		res.Final = rec.State
		return res, err
	}
	if err := o.submitPayment(ctx, txn, handle, rec); err != nil {
		res.Final = rec.State
		return res, err
	}

	pollFinal, cancelOutcome := o.pollAndReconcile(ctx, txn, rec)
	res.Cancellation = cancelOutcome

	final := pollFinal
	if cancelOutcome != nil && cancelOutcome.Succeeded {
		final = StateCancelled
	}
	if err := rec.advance(final); err != nil {
		// The graph admits every terminal state from POLLING, so this
		// only fires on a programming error.
		return res, fmt.Errorf("finalize: %w", err)
	}
	res.Final = final
	o.emit(report.EventFinalOutcome, string(final), "")

	if txn.RefundRequested && final == StateCompleted && rec.SettlementRef != "" {
		refunder := &RefundOrchestrator{
			Gateway:      o.Gateway,
			Reporter:     o.Reporter,
			PollInterval: o.Settings.RefundPollInterval,
			MaxAttempts:  o.Settings.MaxRefundAttempts,
		}
		res.Refund = refunder.Run(ctx, txn, rec.SettlementRef)
	}

	return res, nil
}

func (o *Orchestrator) checkHealth(ctx context.Context, rec *PaymentRecord) error {
	o.emit(report.EventStateEntered, string(StateInit), "Verifying API health...")
	status, err := o.Gateway.Monitor(ctx)
	if err != nil {
		rec.State = StateFailed
		return newError(KindServiceUnavailable, "health check failed", err)
	}
	if !status.Ready() {
		rec.State = StateFailed
		return newError(KindServiceUnavailable, "hub reports status "+status.Status, nil)
	}
	return rec.advance(StateHealthChecked)
}

func (o *Orchestrator) discoverMethods(ctx context.Context, txn TransactionContext, rec *PaymentRecord) error {
	o.emit(report.EventStateEntered, string(StateHealthChecked), "Fetching payment methods...")
	methods, err := o.Gateway.PaymentMethods(ctx, txn.Currency)
	if err != nil {
		rec.State = StateFailed
		return newError(KindUnsupportedCurrency, "method discovery failed", err)
	}
	names := make([]string, 0, len(methods))
	supported := false
	for _, m := range methods {
		names = append(names, m.PaymentMethod)
		if m.PaymentMethod == "CARD" {
			supported = true
		}
	}
	if !supported {
		rec.State = StateFailed
		return newError(KindUnsupportedCurrency, "no CARD method for "+txn.Currency, nil)
	}
	o.Reporter.Emit(report.Event{Type: report.EventMethodsListed, State: string(StateMethodsListed), Methods: names, At: time.Now()})
	return rec.advance(StateMethodsListed)
}

func (o *Orchestrator) createHandle(ctx context.Context, txn TransactionContext, rec *PaymentRecord) (*gateway.Handle, error) {
	o.emit(report.EventStateEntered, string(StateMethodsListed), "Creating payment handle...")
	handle, err := o.Gateway.CreateHandle(ctx, gateway.HandleRequest{
		MerchantRefNum:  txn.MerchantRef,
		TransactionType: "PAYMENT",
		Amount:          txn.Amount,
		AccountID:       txn.AccountID,
		Card:            txn.Card,
		Profile:         txn.Profile,
		PaymentType:     "CARD",
		CurrencyCode:    txn.Currency,
		CustomerIP:      txn.CustomerIP,
		BillingDetails:  txn.Billing,
		ReturnLinks:     txn.ReturnLinks,
	})
	if err != nil {
		rec.State = StateFailed
		return nil, newError(KindHandleCreationError, "handle creation failed", err)
	}
	if err := rec.advance(StateHandleCreated); err != nil {
		return nil, err
	}
	return handle, nil
}

func (o *Orchestrator) submitPayment(ctx context.Context, txn TransactionContext, handle *gateway.Handle, rec *PaymentRecord) error {
	o.emit(report.EventStateEntered, string(StateHandleCreated), "Submitting payment...")
	payment, err := o.Gateway.CreatePayment(ctx, gateway.PaymentRequest{
		MerchantRefNum:     txn.MerchantRef,
		Amount:             txn.Amount,
		CurrencyCode:       txn.Currency,
		PaymentHandleToken: handle.PaymentHandleToken,
	})
	if err != nil {
		rec.State = StateFailed
		return newError(KindPaymentSubmissionError, "payment submission failed", err)
	}
	rec.assignID(payment.ID)
	rec.RemoteStatus = payment.Status
	return rec.advance(StatePaymentSubmitted)
}

// pollAndReconcile runs the bounded completion poll, launching the
// cancellation runner at most once after the first successful
// observation, and reconciles the runner's outcome with the
// poll-derived state.
func (o *Orchestrator) pollAndReconcile(ctx context.Context, txn TransactionContext, rec *PaymentRecord) (State, *CancellationOutcome) {
	o.emit(report.EventStateEntered, string(StatePaymentSubmitted), "Polling for payment completion...")
	if err := rec.advance(StatePolling); err != nil {
		return StateFailed, nil
	}

	cancelCh := make(chan CancellationOutcome, 1)
	launched := false
	pollFinal := StateTimedOut

	for attempt := 1; attempt <= o.Settings.MaxPollAttempts; attempt++ {
		payment, err := o.Gateway.GetPayment(ctx, rec.ID)
		if err != nil {
			// Transient poll failures burn an attempt, the bound still
			// guarantees termination.
			o.Reporter.Emit(report.Event{Type: report.EventPollAttempt, State: string(StatePolling), Attempt: attempt, Detail: "error: " + err.Error(), At: time.Now()})
		} else {
			rec.observe(payment.Status)
			if ref := payment.SettlementRef(); ref != "" {
				rec.SettlementRef = ref
			}
			o.Reporter.Emit(report.Event{Type: report.EventPollAttempt, State: string(StatePolling), Attempt: attempt, Detail: payment.Status, At: time.Now()})

			if !launched && txn.CancelEligible() {
				launched = true
				runner := &CancelRunner{Gateway: o.Gateway, Reporter: o.Reporter}
				go runner.Run(ctx, rec.ID, *rec, cancelCh)
			}

			if state, done := terminalRemoteStatus(payment.Status); done {
				pollFinal = state
				break
			}
		}

		if attempt == o.Settings.MaxPollAttempts {
			break
		}
		select {
		case <-time.After(o.Settings.PollInterval):
		case <-ctx.Done():
			return pollFinal, o.awaitCancel(launched, cancelCh)
		}
	}

	return pollFinal, o.awaitCancel(launched, cancelCh)
}

// awaitCancel waits a bounded time for the runner's one-shot result.
// A runner that misses the window may still finish and log, but it can
// no longer change the outcome.
func (o *Orchestrator) awaitCancel(launched bool, ch <-chan CancellationOutcome) *CancellationOutcome {
	if !launched {
		return nil
	}
	select {
	case outcome := <-ch:
		return &outcome
	case <-time.After(o.Settings.ReconcileWait):
		o.emit(report.EventCancelResult, string(StatePolling), "no result before reconciliation, attempt discarded")
		return &CancellationOutcome{Attempted: true, Succeeded: false}
	}
}

func (o *Orchestrator) emit(t report.EventType, state, detail string) {
	o.Reporter.Emit(report.Event{Type: t, State: state, Detail: detail, At: time.Now()})
}
