package reconciliation

import (
	"context"
	"errors"

	"github.com/zenova/wms-billing/internal/platform/paypal"
	"github.com/zenova/wms-billing/pkg/types"
)

// Disposition is the outcome of processing one provider lifecycle event.
// The event-ingestion path deliberately does not propagate errors: the
// provider's own redelivery is the retry mechanism, and a malformed event
// must never make the provider retry forever. This type makes the
// best-effort contract explicit, as opposed to the error-returning
// verification path.
type Disposition string

const (
	// DispositionProcessed: the event produced its durable writes.
	DispositionProcessed Disposition = "processed"
	// DispositionDropped: required metadata missing; logged and skipped.
	DispositionDropped Disposition = "dropped"
	// DispositionIgnored: recognized-but-ignored or unknown event kind.
	DispositionIgnored Disposition = "ignored"
	// DispositionWriteFailed: a store write failed; swallowed and logged.
	DispositionWriteFailed Disposition = "write_failed"
)

// ErrNotOwner is returned when a verified caller asks about an intent whose
// stored metadata names a different user. Mapped to 403, never to payment
// data.
var ErrNotOwner = errors.New("payment intent does not belong to user")

// VerifyPaymentResult reports both the provider-side and local authoritative
// view of a payment, letting a client poll for confirmation before the
// asynchronous event arrives.
type VerifyPaymentResult struct {
	PaymentIntentID string `json:"paymentIntentId"`
	// Status is the provider-side intent status.
	Status string `json:"status"`
	// DatabaseStatus is the local PaymentRecord status, empty when the
	// event path has not written one yet.
	DatabaseStatus types.PaymentStatus `json:"databaseStatus,omitempty"`
	Amount         int64               `json:"amount"`
	Currency       string              `json:"currency"`
	// Processed: a local record exists at all.
	Processed bool `json:"processed"`
	// WebhookProcessed: the async event path has reconciled this intent to
	// completed.
	WebhookProcessed bool   `json:"webhookProcessed"`
	ClientSecret     string `json:"clientSecret,omitempty"`
}

// Engine turns provider lifecycle events and client verification requests
// into authoritative local payment/subscription state.
type Engine interface {
	// HandleStripeEvent verifies the signature over the raw payload and
	// processes the event. The returned error is non-nil only for
	// signature/decode failure (the one case the provider must see a 400
	// for); everything after verification resolves to a Disposition.
	HandleStripeEvent(ctx context.Context, payload []byte, signature string) (Disposition, error)

	// VerifyPayment retrieves provider-side status for the caller's own
	// intent and cross-references the local record.
	VerifyPayment(ctx context.Context, uid, intentID string) (*VerifyPaymentResult, error)

	// RecordWalletCapture reconciles a successful wallet-order capture:
	// records the completed payment keyed by the order id and settles the
	// referenced invoice.
	RecordWalletCapture(ctx context.Context, uid string, order *paypal.Order) error
}
