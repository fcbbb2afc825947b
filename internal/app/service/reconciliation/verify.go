package reconciliation

import (
	"context"
	"fmt"

	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/types"
)

// VerifyPayment is the synchronous, error-propagating path: the caller is
// waiting, so store and provider failures surface instead of being swallowed.
func (s *Service) VerifyPayment(ctx context.Context, uid, intentID string) (*VerifyPaymentResult, error) {
	lg := logctx.FromCtx(ctx, s.log)

	pi, err := s.gw.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	// Ownership check before anything about the payment is disclosed.
	if pi.Metadata["userId"] != uid {
		return nil, ErrNotOwner
	}

	local, err := s.payments.GetPayment(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to cross-reference payment record: %w", err)
	}

	res := &VerifyPaymentResult{
		PaymentIntentID: pi.ID,
		Status:          string(pi.Status),
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		ClientSecret:    pi.ClientSecret,
	}
	if local != nil {
		res.Processed = true
		res.DatabaseStatus = local.Status
		res.WebhookProcessed = local.Status == types.PaymentStatusCompleted
	}

	lg.Infow("payment_verified", "intent_id", intentID, "provider_status", res.Status,
		"database_status", res.DatabaseStatus, "webhook_processed", res.WebhookProcessed)
	return res, nil
}
