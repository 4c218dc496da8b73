package flow

import (
	"context"
	"time"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
)

// RefundOrchestrator runs the refund sub-flow after a completed
// payment. It is never concurrent with the main lifecycle, and its
// failures never overturn the already-finalized payment outcome.
type RefundOrchestrator struct {
	Gateway      Gateway
	Reporter     report.Reporter
	PollInterval time.Duration
	MaxAttempts  int
}

// Run creates a refund against the settlement and polls it to a
// terminal state within the attempt bound.
func (r *RefundOrchestrator) Run(ctx context.Context, txn TransactionContext, settlementRef string) *RefundRecord {
	rec := &RefundRecord{Status: RefundPending}

	refund, err := r.Gateway.CreateRefund(ctx, settlementRef, gateway.RefundRequest{
		MerchantRefNum: txn.MerchantRef,
		Amount:         txn.Amount,
	})
	if err != nil {
		rec.Status = RefundFailed
		r.emit(newError(KindRefundCreationError, "refund creation failed", err).Error(), 0)
		return rec
	}
	rec.ID = refund.ID
	r.emit("created "+refund.ID, 0)

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		current, err := r.Gateway.GetRefund(ctx, rec.ID)
		if err == nil {
			rec.PollAttempts = attempt
			r.emit(current.Status, attempt)
			switch current.Status {
			case remoteCompleted:
				rec.Status = RefundCompleted
				return rec
			case remoteFailed:
				rec.Status = RefundFailed
				return rec
			}
		} else {
			rec.PollAttempts = attempt
			r.emit("poll error: "+err.Error(), attempt)
		}

		if attempt == r.MaxAttempts {
			break
		}
		select {
		case <-time.After(r.PollInterval):
		case <-ctx.Done():
			rec.Status = RefundTimedOut
			return rec
		}
	}

	// Bound reached without a terminal status. Reported, not fatal.
	rec.Status = RefundTimedOut
	r.emit(string(RefundTimedOut), rec.PollAttempts)
	return rec
}

func (r *RefundOrchestrator) emit(detail string, attempt int) {
	r.Reporter.Emit(report.Event{Type: report.EventRefundUpdate, Detail: detail, Attempt: attempt, At: time.Now()})
}
