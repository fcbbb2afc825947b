package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/internal/platform/stripegw"
	"github.com/zenova/wms-billing/pkg/types"
)

type fakeGateway struct {
	event       stripe.Event
	eventErr    error
	intent      *stripe.PaymentIntent
	retrieveErr error
}

func (f *fakeGateway) CreatePaymentIntent(context.Context, *stripegw.CreateIntentInput) (*stripegw.CreatedIntent, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) RetrievePaymentIntent(context.Context, string) (*stripe.PaymentIntent, error) {
	return f.intent, f.retrieveErr
}

func (f *fakeGateway) ConstructEvent([]byte, string) (stripe.Event, error) {
	return f.event, f.eventErr
}

type fakePayments struct {
	saved   map[string]*models.Payment
	saveErr error
	getErr  error
}

func newFakePayments() *fakePayments {
	return &fakePayments{saved: map[string]*models.Payment{}}
}

func (f *fakePayments) SavePayment(_ context.Context, p *models.Payment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *p
	f.saved[p.IntentID] = &cp
	return nil
}

func (f *fakePayments) GetPayment(_ context.Context, intentID string) (*models.Payment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.saved[intentID], nil
}

func (f *fakePayments) ScanPayments(context.Context, *store.ScanPaymentsRequest) (*store.ScanPaymentsResponse, error) {
	return nil, errors.New("not used")
}

type activation struct {
	userID, planID, intentID string
}

type fakeSubs struct {
	activations []activation
	err         error
}

func (f *fakeSubs) ActivateSubscription(_ context.Context, userID, planID, intentID string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.activations = append(f.activations, activation{userID, planID, intentID})
	return nil
}

func (f *fakeSubs) GetSubscription(context.Context, string, string) (*models.Subscription, error) {
	return nil, nil
}

type fakeInvoices struct {
	byID     map[string]*models.Invoice
	statuses map[string]types.InvoiceStatus
	getErr   error
	setErr   error
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{byID: map[string]*models.Invoice{}, statuses: map[string]types.InvoiceStatus{}}
}

func (f *fakeInvoices) GetInvoice(_ context.Context, id string) (*models.Invoice, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID[id], nil
}

func (f *fakeInvoices) ListDueBefore(context.Context, time.Time) ([]*models.Invoice, error) {
	return nil, errors.New("not used")
}

func (f *fakeInvoices) ListUpcomingDue(context.Context, time.Time, time.Time) ([]*models.Invoice, error) {
	return nil, errors.New("not used")
}

func (f *fakeInvoices) SetInvoiceStatus(_ context.Context, id string, st types.InvoiceStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.statuses[id] = st
	if inv, ok := f.byID[id]; ok {
		inv.Status = st
	}
	return nil
}

func newTestService(gw stripegw.Gateway, p *fakePayments, subs *fakeSubs, inv *fakeInvoices) *Service {
	return &Service{
		gw:       gw,
		payments: p,
		subs:     subs,
		invoices: inv,
		log:      zap.NewNop().Sugar(),
	}
}

func succeededEvent(t *testing.T, intent map[string]any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	return stripe.Event{
		ID:   "evt_1",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleStripeEvent_Succeeded(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	gw := &fakeGateway{event: succeededEvent(t, map[string]any{
		"id":       "pi_1",
		"amount":   5000,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1", "planId": "plan-basic"},
		"customer": map[string]string{"id": "cus_1"},
	})}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionProcessed, d)

	saved := p.saved["pi_1"]
	require.NotNil(t, saved)
	require.Equal(t, types.PaymentStatusCompleted, saved.Status)
	require.Equal(t, 50.00, saved.Amount)
	require.Equal(t, "myr", saved.Currency)
	require.Equal(t, "user-1", saved.UserID)
	require.Equal(t, "plan-basic", saved.PlanID)
	require.Equal(t, "cus_1", saved.CustomerID)
	require.Equal(t, types.PaymentProviderStripe, saved.PaymentMethod)

	require.Len(t, subs.activations, 1)
	require.Equal(t, activation{"user-1", "plan-basic", "pi_1"}, subs.activations[0])
}

func TestHandleStripeEvent_RedeliveryOverwrites(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	gw := &fakeGateway{event: succeededEvent(t, map[string]any{
		"id":       "pi_1",
		"amount":   5000,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1", "planId": "plan-basic"},
	})}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	for i := 0; i < 2; i++ {
		d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
		require.NoError(t, err)
		require.Equal(t, DispositionProcessed, d)
	}

	require.Len(t, p.saved, 1)
	require.Equal(t, types.PaymentStatusCompleted, p.saved["pi_1"].Status)
}

func TestHandleStripeEvent_MissingMetadataDropped(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	gw := &fakeGateway{event: succeededEvent(t, map[string]any{
		"id":       "pi_2",
		"amount":   5000,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1"},
	})}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionDropped, d)
	require.Empty(t, p.saved)
	require.Empty(t, subs.activations)
}

func TestHandleStripeEvent_FailedRecordsReason(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	raw, err := json.Marshal(map[string]any{
		"id":       "pi_3",
		"amount":   9900,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1", "planId": "plan-pro"},
		"last_payment_error": map[string]any{
			"message": "Your card was declined.",
		},
	})
	require.NoError(t, err)
	gw := &fakeGateway{event: stripe.Event{
		ID:   "evt_3",
		Type: "payment_intent.payment_failed",
		Data: &stripe.EventData{Raw: raw},
	}}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionProcessed, d)

	saved := p.saved["pi_3"]
	require.NotNil(t, saved)
	require.Equal(t, types.PaymentStatusFailed, saved.Status)
	require.Equal(t, "Your card was declined.", saved.FailureReason)
	require.Empty(t, subs.activations, "failed payment must not activate a subscription")
}

func TestHandleStripeEvent_FailedWithoutErrorDetailFallsBack(t *testing.T) {
	p := newFakePayments()
	raw, err := json.Marshal(map[string]any{
		"id":       "pi_4",
		"amount":   100,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1", "planId": "plan-pro"},
	})
	require.NoError(t, err)
	gw := &fakeGateway{event: stripe.Event{
		Type: "payment_intent.payment_failed",
		Data: &stripe.EventData{Raw: raw},
	}}
	svc := newTestService(gw, p, &fakeSubs{}, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionProcessed, d)
	require.Equal(t, "Unknown error", p.saved["pi_4"].FailureReason)
}

func TestHandleStripeEvent_BadSignatureNoWrites(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	gw := &fakeGateway{eventErr: errors.New("signature mismatch")}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	_, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	require.Empty(t, p.saved)
	require.Empty(t, subs.activations)
}

func TestHandleStripeEvent_UnhandledTypeIgnored(t *testing.T) {
	p := newFakePayments()
	gw := &fakeGateway{event: stripe.Event{Type: "charge.refunded", Data: &stripe.EventData{Raw: []byte("{}")}}}
	svc := newTestService(gw, p, &fakeSubs{}, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionIgnored, d)
	require.Empty(t, p.saved)
}

func TestHandleStripeEvent_CanceledIgnored(t *testing.T) {
	p := newFakePayments()
	subs := &fakeSubs{}
	gw := &fakeGateway{event: stripe.Event{Type: "payment_intent.canceled", Data: &stripe.EventData{Raw: []byte("{}")}}}
	svc := newTestService(gw, p, subs, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	require.Equal(t, DispositionIgnored, d)
	require.Empty(t, subs.activations)
}

func TestHandleStripeEvent_WriteFailure(t *testing.T) {
	p := newFakePayments()
	p.saveErr = errors.New("store down")
	gw := &fakeGateway{event: succeededEvent(t, map[string]any{
		"id":       "pi_5",
		"amount":   5000,
		"currency": "myr",
		"metadata": map[string]string{"userId": "user-1", "planId": "plan-basic"},
	})}
	svc := newTestService(gw, p, &fakeSubs{}, newFakeInvoices())

	d, err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err, "store failure must still acknowledge the event")
	require.Equal(t, DispositionWriteFailed, d)
}
