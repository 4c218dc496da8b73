package flow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/flow"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
)

// fakeGateway scripts the hub. GetPayment returns the scripted
// statuses in order, repeating the last one; every override is
// optional.
type fakeGateway struct {
	mu sync.Mutex

	statuses []string

	monitorFn func() (*gateway.MonitorStatus, error)
	methodsFn func(currency string) ([]gateway.PaymentMethod, error)
	handleFn  func(req gateway.HandleRequest) (*gateway.Handle, error)
	paymentFn func(req gateway.PaymentRequest) (*gateway.Payment, error)
	getFn     func(call int) (*gateway.Payment, error)
	cancelFn  func() (*gateway.Payment, error)
	refundFn  func(settlementID string, req gateway.RefundRequest) (*gateway.Refund, error)
	getRefFn  func(call int) (*gateway.Refund, error)

	getCalls         int
	cancelCalls      int
	getCallsAtCancel int
	refundCalls      int
	getRefCalls      int
}

func (f *fakeGateway) Monitor(ctx context.Context) (*gateway.MonitorStatus, error) {
	if f.monitorFn != nil {
		return f.monitorFn()
	}
	return &gateway.MonitorStatus{Status: "READY"}, nil
}

func (f *fakeGateway) PaymentMethods(ctx context.Context, currency string) ([]gateway.PaymentMethod, error) {
	if f.methodsFn != nil {
		return f.methodsFn(currency)
	}
	return []gateway.PaymentMethod{{PaymentMethod: "CARD", CurrencyCode: currency}}, nil
}

func (f *fakeGateway) CreateHandle(ctx context.Context, req gateway.HandleRequest) (*gateway.Handle, error) {
	if f.handleFn != nil {
		return f.handleFn(req)
	}
	return &gateway.Handle{ID: "h-1", PaymentHandleToken: "tok-1", Status: "PAYABLE"}, nil
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.Payment, error) {
	if f.paymentFn != nil {
		return f.paymentFn(req)
	}
	return &gateway.Payment{ID: "pay-1", Status: "PROCESSING"}, nil
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*gateway.Payment, error) {
	f.mu.Lock()
	call := f.getCalls
	f.getCalls++
	f.mu.Unlock()

	if f.getFn != nil {
		return f.getFn(call)
	}
	status := f.statuses[min(call, len(f.statuses)-1)]
	p := &gateway.Payment{ID: id, Status: status}
	if status == "COMPLETED" {
		p.Settlements = []gateway.Settlement{{ID: "settle-1", Status: "PENDING"}}
	}
	return p, nil
}

func (f *fakeGateway) CancelPayment(ctx context.Context, id string) (*gateway.Payment, error) {
	f.mu.Lock()
	f.cancelCalls++
	f.getCallsAtCancel = f.getCalls
	f.mu.Unlock()

	if f.cancelFn != nil {
		return f.cancelFn()
	}
	return &gateway.Payment{ID: id, Status: "CANCELLED"}, nil
}

func (f *fakeGateway) CreateRefund(ctx context.Context, settlementID string, req gateway.RefundRequest) (*gateway.Refund, error) {
	f.mu.Lock()
	f.refundCalls++
	f.mu.Unlock()

	if f.refundFn != nil {
		return f.refundFn(settlementID, req)
	}
	return &gateway.Refund{ID: "ref-1", Amount: req.Amount, Status: "PENDING"}, nil
}

func (f *fakeGateway) GetRefund(ctx context.Context, id string) (*gateway.Refund, error) {
	f.mu.Lock()
	call := f.getRefCalls
	f.getRefCalls++
	f.mu.Unlock()

	if f.getRefFn != nil {
		return f.getRefFn(call)
	}
	return &gateway.Refund{ID: id, Status: "COMPLETED"}, nil
}

func (f *fakeGateway) counts() (gets, cancels int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.cancelCalls
}

func testSettings() flow.Settings {
	return flow.Settings{
		PollInterval:       time.Millisecond,
		MaxPollAttempts:    5,
		RefundPollInterval: time.Millisecond,
		MaxRefundAttempts:  10,
		ReconcileWait:      200 * time.Millisecond,
	}
}

func testTxn(amount int64) flow.TransactionContext {
	return flow.TransactionContext{
		Currency:    "USD",
		Amount:      amount,
		MerchantRef: "mref-1",
		AccountID:   "acct-1",
	}
}

func TestRunCompletesPlainPayment(t *testing.T) {
	gw := &fakeGateway{statuses: []string{"PROCESSING", "COMPLETED"}}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.NoError(t, err)
	require.Equal(t, flow.StateCompleted, res.Final)
	require.Equal(t, "pay-1", res.Payment.ID)
	require.Equal(t, "settle-1", res.Payment.SettlementRef)
	require.Equal(t, 2, res.Payment.PollAttempts)
	require.Nil(t, res.Cancellation)
	require.Nil(t, res.Refund)

	_, cancels := gw.counts()
	require.Zero(t, cancels)
}

func TestCancelNeverLaunchedOutsideWindow(t *testing.T) {
	for _, amount := range []int64{4, 89, 100, 400} {
		gw := &fakeGateway{statuses: []string{"PROCESSING", "COMPLETED"}}
		orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

		txn := testTxn(amount)
		txn.CancelRequested = true

		res, err := orch.Run(context.Background(), txn)
		require.NoError(t, err)
		require.Equal(t, flow.StateCompleted, res.Final)
		require.Nil(t, res.Cancellation)

		_, cancels := gw.counts()
		require.Zero(t, cancels, "amount %d must not trigger cancellation", amount)
	}
}

func TestCancelNeverLaunchedWithoutFlag(t *testing.T) {
	gw := &fakeGateway{statuses: []string{"PROCESSING", "COMPLETED"}}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(91))
	require.NoError(t, err)
	require.Nil(t, res.Cancellation)

	_, cancels := gw.counts()
	require.Zero(t, cancels)
}

func TestCancelLaunchedExactlyOnceInWindow(t *testing.T) {
	gw := &fakeGateway{}
	gw.getFn = func(call int) (*gateway.Payment, error) {
		gw.mu.Lock()
		cancelled := gw.cancelCalls > 0
		gw.mu.Unlock()
		if cancelled {
			return &gateway.Payment{ID: "pay-1", Status: "CANCELLED"}, nil
		}
		return &gateway.Payment{ID: "pay-1", Status: "PROCESSING"}, nil
	}

	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	txn := testTxn(91)
	txn.CancelRequested = true

	res, err := orch.Run(context.Background(), txn)
	require.NoError(t, err)
	require.Equal(t, flow.StateCancelled, res.Final)
	require.NotNil(t, res.Cancellation)
	require.True(t, res.Cancellation.Attempted)
	require.True(t, res.Cancellation.Succeeded)

	_, cancels := gw.counts()
	require.Equal(t, 1, cancels)
	require.GreaterOrEqual(t, gw.getCallsAtCancel, 1, "cancellation must not start before the first poll observation")
}

func TestCancelSuccessTakesPrecedenceOverCompleted(t *testing.T) {
	// The poll loop observes COMPLETED while the runner's cancellation
	// also succeeds. Confirmed cancellation must win.
	gw := &fakeGateway{statuses: []string{"PROCESSING", "COMPLETED"}}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	txn := testTxn(95)
	txn.CancelRequested = true

	res, err := orch.Run(context.Background(), txn)
	require.NoError(t, err)
	require.NotNil(t, res.Cancellation)
	require.True(t, res.Cancellation.Succeeded)
	require.Equal(t, flow.StateCancelled, res.Final)
}

func TestLateCancelResultIsDiscarded(t *testing.T) {
	settings := testSettings()
	settings.ReconcileWait = 10 * time.Millisecond

	release := make(chan struct{})
	gw := &fakeGateway{statuses: []string{"PROCESSING", "COMPLETED"}}
	gw.cancelFn = func() (*gateway.Payment, error) {
		<-release
		return &gateway.Payment{ID: "pay-1", Status: "CANCELLED"}, nil
	}
	defer close(release)

	orch := flow.NewOrchestrator(gw, report.Nop{}, settings)

	txn := testTxn(91)
	txn.CancelRequested = true

	res, err := orch.Run(context.Background(), txn)
	require.NoError(t, err)
	require.Equal(t, flow.StateCompleted, res.Final, "poll-derived status governs when the runner misses the window")
	require.NotNil(t, res.Cancellation)
	require.False(t, res.Cancellation.Succeeded)
}

func TestPollLoopTimesOutAtBound(t *testing.T) {
	gw := &fakeGateway{statuses: []string{"PROCESSING"}}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.NoError(t, err)
	require.Equal(t, flow.StateTimedOut, res.Final)
	require.Equal(t, 5, res.Payment.PollAttempts)

	gets, _ := gw.counts()
	require.Equal(t, 5, gets)
}

func TestHealthCheckFailureAbortsImmediately(t *testing.T) {
	gw := &fakeGateway{}
	gw.monitorFn = func() (*gateway.MonitorStatus, error) {
		return nil, errors.New("connection refused")
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.Error(t, err)
	require.Equal(t, flow.KindServiceUnavailable, flow.KindOf(err))
	require.Equal(t, flow.StateFailed, res.Final)

	gets, cancels := gw.counts()
	require.Zero(t, gets)
	require.Zero(t, cancels)
}

func TestNonOperationalHubAborts(t *testing.T) {
	gw := &fakeGateway{}
	gw.monitorFn = func() (*gateway.MonitorStatus, error) {
		return &gateway.MonitorStatus{Status: "OUTAGE"}, nil
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	_, err := orch.Run(context.Background(), testTxn(4))
	require.Equal(t, flow.KindServiceUnavailable, flow.KindOf(err))
}

func TestMissingCardMethodFailsUnsupportedCurrency(t *testing.T) {
	gw := &fakeGateway{}
	gw.methodsFn = func(currency string) ([]gateway.PaymentMethod, error) {
		return []gateway.PaymentMethod{{PaymentMethod: "PAYSAFECARD", CurrencyCode: currency}}, nil
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.Error(t, err)
	require.Equal(t, flow.KindUnsupportedCurrency, flow.KindOf(err))
	require.Equal(t, flow.StateFailed, res.Final)
}

func TestHandleCreationErrorCarriesRemoteCode(t *testing.T) {
	gw := &fakeGateway{}
	gw.handleFn = func(req gateway.HandleRequest) (*gateway.Handle, error) {
		return nil, &gateway.APIError{Status: 400, Code: "5068", Message: "invalid request"}
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	_, err := orch.Run(context.Background(), testTxn(4))
	require.Equal(t, flow.KindHandleCreationError, flow.KindOf(err))
	require.Equal(t, "5068", flow.RemoteCodeOf(err))
}

func TestPaymentSubmissionErrorAborts(t *testing.T) {
	gw := &fakeGateway{}
	gw.paymentFn = func(req gateway.PaymentRequest) (*gateway.Payment, error) {
		return nil, &gateway.APIError{Status: 402, Code: "3022", Message: "declined"}
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.Equal(t, flow.KindPaymentSubmissionError, flow.KindOf(err))
	require.Equal(t, "3022", flow.RemoteCodeOf(err))
	require.Equal(t, flow.StateFailed, res.Final)

	gets, _ := gw.counts()
	require.Zero(t, gets, "no polling after a failed submission")
}

func TestTransientPollErrorsStillTerminate(t *testing.T) {
	gw := &fakeGateway{}
	gw.getFn = func(call int) (*gateway.Payment, error) {
		if call%2 == 0 {
			return nil, errors.New("temporary network error")
		}
		return &gateway.Payment{ID: "pay-1", Status: "PROCESSING"}, nil
	}
	orch := flow.NewOrchestrator(gw, report.Nop{}, testSettings())

	res, err := orch.Run(context.Background(), testTxn(4))
	require.NoError(t, err)
	require.Equal(t, flow.StateTimedOut, res.Final)

	gets, _ := gw.counts()
	require.Equal(t, 5, gets)
}
