package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/internal/platform/stripegw"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/types"
)

const unknownFailureReason = "Unknown error"

var errMissingMetadata = errors.New("intent metadata missing userId or planId")

var eventCnt = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "billing_webhook_events_total",
	Help: "Provider lifecycle events by type and disposition.",
}, []string{"type", "disposition"})

type Service struct {
	gw       stripegw.Gateway
	payments store.Payments
	subs     store.Subscriptions
	invoices store.Invoices
	log      *zap.SugaredLogger
}

func NewService(gw stripegw.Gateway, payments store.Payments, subs store.Subscriptions, invoices store.Invoices, log *zap.SugaredLogger) Engine {
	return &Service{gw: gw, payments: payments, subs: subs, invoices: invoices, log: log}
}

func (s *Service) HandleStripeEvent(ctx context.Context, payload []byte, signature string) (Disposition, error) {
	event, err := s.gw.ConstructEvent(payload, signature)
	if err != nil {
		return "", fmt.Errorf("webhook signature verification failed: %w", err)
	}

	lg := logctx.FromCtx(ctx, s.log)

	var d Disposition
	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			lg.Errorw("webhook_event_undecodable", "type", event.Type, "error", err)
			d = DispositionDropped
			break
		}
		d = s.handleSucceeded(ctx, &pi)
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			lg.Errorw("webhook_event_undecodable", "type", event.Type, "error", err)
			d = DispositionDropped
			break
		}
		d = s.handleFailed(ctx, &pi)
	case "payment_intent.canceled":
		// Cancellation does not roll back a prior subscription.
		lg.Infow("payment_intent_canceled", "event_id", event.ID)
		d = DispositionIgnored
	default:
		// Open set: future event kinds must not fail processing.
		lg.Infow("webhook_event_unhandled", "type", event.Type, "event_id", event.ID)
		d = DispositionIgnored
	}

	eventCnt.WithLabelValues(string(event.Type), string(d)).Inc()
	return d, nil
}

func (s *Service) handleSucceeded(ctx context.Context, pi *stripe.PaymentIntent) Disposition {
	lg := logctx.FromCtx(ctx, s.log)

	p, err := paymentFromIntent(pi)
	if err != nil {
		lg.Errorw("webhook_event_malformed", "intent_id", pi.ID, "error", err)
		return DispositionDropped
	}
	p.Status = types.PaymentStatusCompleted

	if err := s.payments.SavePayment(ctx, p); err != nil {
		lg.Errorw("payment_record_write_failed", "intent_id", pi.ID, "error", err)
		return DispositionWriteFailed
	}

	if err := s.subs.ActivateSubscription(ctx, p.UserID, p.PlanID, p.IntentID, time.Now()); err != nil {
		lg.Errorw("subscription_upsert_failed", "intent_id", pi.ID, "user_id", p.UserID, "plan_id", p.PlanID, "error", err)
		return DispositionWriteFailed
	}

	lg.Infow("payment_reconciled", "intent_id", pi.ID, "user_id", p.UserID, "plan_id", p.PlanID, "amount", p.Amount)
	return DispositionProcessed
}

func (s *Service) handleFailed(ctx context.Context, pi *stripe.PaymentIntent) Disposition {
	lg := logctx.FromCtx(ctx, s.log)

	p, err := paymentFromIntent(pi)
	if err != nil {
		lg.Errorw("webhook_event_malformed", "intent_id", pi.ID, "error", err)
		return DispositionDropped
	}
	p.Status = types.PaymentStatusFailed
	p.FailureReason = failureReason(pi)

	if err := s.payments.SavePayment(ctx, p); err != nil {
		lg.Errorw("payment_record_write_failed", "intent_id", pi.ID, "error", err)
		return DispositionWriteFailed
	}

	lg.Infow("payment_failure_recorded", "intent_id", pi.ID, "user_id", p.UserID, "reason", p.FailureReason)
	return DispositionProcessed
}

// paymentFromIntent maps a provider intent to the local record, normalizing
// the amount from minor to major units. Missing user/plan metadata is the
// malformed-event case.
func paymentFromIntent(pi *stripe.PaymentIntent) (*models.Payment, error) {
	userID := pi.Metadata["userId"]
	planID := pi.Metadata["planId"]
	if userID == "" || planID == "" {
		return nil, errMissingMetadata
	}

	p := &models.Payment{
		IntentID:      pi.ID,
		UserID:        userID,
		PlanID:        planID,
		Amount:        minorToMajor(pi.Amount),
		Currency:      string(pi.Currency),
		PaymentMethod: types.PaymentProviderStripe,
	}
	if pi.Customer != nil {
		p.CustomerID = pi.Customer.ID
	}
	return p, nil
}

func minorToMajor(amount int64) float64 {
	return float64(amount) / 100
}

func failureReason(pi *stripe.PaymentIntent) string {
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		return pi.LastPaymentError.Msg
	}
	return unknownFailureReason
}
