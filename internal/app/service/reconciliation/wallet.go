package reconciliation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/internal/platform/paypal"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/types"
)

// RecordWalletCapture reconciles a captured wallet order: a completed
// payment keyed by the order id (so a re-delivered capture overwrites, not
// duplicates), then the referenced invoice moves to paid. Runs on the
// synchronous capture path, so errors propagate.
func (s *Service) RecordWalletCapture(ctx context.Context, uid string, order *paypal.Order) error {
	lg := logctx.FromCtx(ctx, s.log)

	if order == nil || order.Status != "COMPLETED" {
		lg.Warnw("wallet_capture_not_completed", "order_id", orderID(order), "status", orderStatus(order))
		return nil
	}

	p := &models.Payment{
		IntentID:      order.ID,
		UserID:        uid,
		Status:        types.PaymentStatusCompleted,
		PaymentMethod: types.PaymentProviderPayPal,
	}
	if len(order.PurchaseUnits) > 0 {
		p.InvoiceID = order.PurchaseUnits[0].ReferenceID
	}
	if capture := order.FirstCapture(); capture != nil && capture.Amount != nil {
		amount, err := strconv.ParseFloat(capture.Amount.Value, 64)
		if err != nil {
			return fmt.Errorf("failed to parse capture amount %q: %w", capture.Amount.Value, err)
		}
		p.Amount = amount
		p.Currency = capture.Amount.CurrencyCode
	}

	if err := s.payments.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to record wallet payment: %w", err)
	}

	if p.InvoiceID == "" {
		lg.Warnw("wallet_capture_without_invoice", "order_id", order.ID)
		return nil
	}

	inv, err := s.invoices.GetInvoice(ctx, p.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice %s: %w", p.InvoiceID, err)
	}
	if inv == nil {
		// Record-not-found is non-fatal: the payment stands on its own.
		lg.Errorw("wallet_capture_invoice_missing", "order_id", order.ID, "invoice_id", p.InvoiceID)
		return nil
	}

	if inv.Status == types.InvoiceStatusPaid {
		// Re-delivered capture; nothing left to settle.
		return nil
	}
	if !inv.Status.CanTransitionTo(types.InvoiceStatusPaid) {
		lg.Errorw("wallet_capture_invalid_invoice_state", "invoice_id", inv.ID, "status", inv.Status)
		return nil
	}
	if err := s.invoices.SetInvoiceStatus(ctx, inv.ID, types.InvoiceStatusPaid); err != nil {
		return fmt.Errorf("failed to settle invoice %s: %w", inv.ID, err)
	}

	lg.Infow("invoice_settled", "invoice_id", inv.ID, "order_id", order.ID, "amount", p.Amount, "at", time.Now())
	return nil
}

func orderID(o *paypal.Order) string {
	if o == nil {
		return ""
	}
	return o.ID
}

func orderStatus(o *paypal.Order) string {
	if o == nil {
		return ""
	}
	return o.Status
}
