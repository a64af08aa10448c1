package payment

import (
	"context"
	"errors"
)

// Statuses a capture may report and still count as accepted.
var acceptedStatuses = map[string]bool{
	"succeeded":        true,
	"requires_capture": true,
	"processing":       true,
}

// Accepted reports whether a gateway status lets the order proceed.
func Accepted(status string) bool {
	return acceptedStatuses[status]
}

// DefaultDeclineReason is used when the gateway gives no explanation.
const DefaultDeclineReason = "Payment was declined by the bank."

// Confirmation is the gateway's answer to an accepted capture.
type Confirmation struct {
	ID          string
	Status      string
	AmountMinor int64
	Currency    string
}

// DeclinedError is returned for any capture that must not lead to an order:
// an explicit decline, an unaccepted status, a transport failure or a
// timeout. Callers treat all of them as fail-closed.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// ErrDisabled is wrapped by Disabled when no gateway secret is configured.
var ErrDisabled = errors.New("online payments are not available")

// Gateway captures a payment synchronously.
type Gateway interface {
	Capture(ctx context.Context, amountMinor int64, currency, methodRef string) (*Confirmation, error)
}

// Disabled is the Gateway used when no payment secret is configured.
type Disabled struct{}

func (Disabled) Capture(ctx context.Context, amountMinor int64, currency, methodRef string) (*Confirmation, error) {
	return nil, &DeclinedError{Reason: ErrDisabled.Error()}
}
