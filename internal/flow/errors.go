package flow

import (
	"errors"
	"fmt"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
)

// Kind classifies a lifecycle failure
type Kind string

const (
	KindServiceUnavailable     Kind = "ServiceUnavailable"
	KindUnsupportedCurrency    Kind = "UnsupportedCurrency"
	KindHandleCreationError    Kind = "HandleCreationError"
	KindPaymentSubmissionError Kind = "PaymentSubmissionError"
	KindAlreadyFinalized       Kind = "AlreadyFinalized"
	KindRefundCreationError    Kind = "RefundCreationError"
	KindTransportError         Kind = "TransportError"
	KindUnclassified           Kind = "Unclassified"
)

// Error is a classified lifecycle failure. RemoteCode carries the
// hub's error code when one was returned, for fixture validation.
type Error struct {
	Kind       Kind
	RemoteCode string
	msg        string
	err        error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// newError classifies err, lifting the remote error code out of an
// APIError when present.
func newError(kind Kind, msg string, err error) *Error {
	fe := &Error{Kind: kind, msg: msg, err: err}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		fe.RemoteCode = apiErr.Code
	}
	return fe
}

// KindOf returns the classification of err, or KindUnclassified for
// anything outside the taxonomy.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnclassified
}

// RemoteCodeOf extracts the hub error code from a classified error
func RemoteCodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.RemoteCode
	}
	return ""
}
