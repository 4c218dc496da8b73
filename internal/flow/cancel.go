package flow

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
)

// CancelRunner attempts a single CANCELLED status transition while the
// remote payment is still in flight. It never mutates the
// PaymentRecord; its only output is the one-shot CancellationOutcome.
type CancelRunner struct {
	Gateway  Gateway
	Reporter report.Reporter
}

// Run issues the cancellation attempt and delivers the outcome on out.
// out must be buffered: the orchestrator may have moved on by the time
// the attempt resolves, and the send must not block this goroutine.
func (r *CancelRunner) Run(ctx context.Context, paymentID string, snapshot PaymentRecord, out chan<- CancellationOutcome) {
	outcome := CancellationOutcome{ObservedStatus: snapshot.RemoteStatus}

	if _, done := terminalRemoteStatus(snapshot.RemoteStatus); done {
		outcome.Err = newError(KindAlreadyFinalized, "payment already "+snapshot.RemoteStatus, nil)
		r.report(outcome)
		out <- outcome
		return
	}

	outcome.Attempted = true
	payment, err := r.Gateway.CancelPayment(ctx, paymentID)
	switch {
	case err == nil && payment.Status == remoteCancelled:
		outcome.Succeeded = true
		outcome.ObservedStatus = payment.Status
	case err == nil:
		outcome.ObservedStatus = payment.Status
		outcome.Err = newError(KindAlreadyFinalized, "hub kept status "+payment.Status, nil)
	case isAlreadyFinalized(err):
		outcome.Err = newError(KindAlreadyFinalized, "payment finalized before cancellation", err)
	default:
		outcome.Err = newError(KindTransportError, "cancellation request failed", err)
	}

	r.report(outcome)
	out <- outcome
}

func (r *CancelRunner) report(outcome CancellationOutcome) {
	detail := "succeeded"
	if !outcome.Succeeded {
		detail = "not applied"
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		}
	}
	r.Reporter.Emit(report.Event{Type: report.EventCancelResult, State: string(StatePolling), Detail: detail, At: time.Now()})
}

// isAlreadyFinalized recognizes the hub rejecting a status transition
// on a payment that already reached a terminal state.
func isAlreadyFinalized(err error) bool {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict || apiErr.Status == http.StatusBadRequest
}
