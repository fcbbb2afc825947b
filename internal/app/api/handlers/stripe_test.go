package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/service/reconciliation"
	"github.com/zenova/wms-billing/internal/platform/paypal"
)

type fakeEngine struct {
	disposition reconciliation.Disposition
	handleErr   error
	verifyRes   *reconciliation.VerifyPaymentResult
	verifyErr   error
	captureErr  error

	gotPayload   []byte
	gotSignature string
}

func (f *fakeEngine) HandleStripeEvent(_ context.Context, payload []byte, signature string) (reconciliation.Disposition, error) {
	f.gotPayload = payload
	f.gotSignature = signature
	return f.disposition, f.handleErr
}

func (f *fakeEngine) VerifyPayment(context.Context, string, string) (*reconciliation.VerifyPaymentResult, error) {
	return f.verifyRes, f.verifyErr
}

func (f *fakeEngine) RecordWalletCapture(context.Context, string, *paypal.Order) error {
	return f.captureErr
}

type fakeVerifier struct {
	uid string
	err error
}

func (f *fakeVerifier) VerifyIDToken(context.Context, string) (string, error) {
	return f.uid, f.err
}

func newStripeRouter(eng *fakeEngine, verifier *fakeVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterStripeRoutes(r, eng, nil, verifier, zap.NewNop().Sugar())
	return r
}

func TestRegisterStripeRoutes_RegistersEndpoints(t *testing.T) {
	r := newStripeRouter(&fakeEngine{}, &fakeVerifier{uid: "u1"})

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /createPaymentIntent"))
	require.True(t, contains("POST /verifyPayment"))
	require.True(t, contains("POST /stripeWebhook"))
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	eng := &fakeEngine{handleErr: errors.New("signature mismatch")}
	r := newStripeRouter(eng, &fakeVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body["error"], "signature")
}

func TestStripeWebhook_PassesRawBodyAndSignature(t *testing.T) {
	eng := &fakeEngine{disposition: reconciliation.DispositionProcessed}
	r := newStripeRouter(eng, &fakeVerifier{})

	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, payload, string(eng.gotPayload), "signature verification needs the untouched bytes")
	require.Equal(t, "t=1,v1=good", eng.gotSignature)
	require.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestStripeWebhook_WriteFailureStillAcknowledged(t *testing.T) {
	eng := &fakeEngine{disposition: reconciliation.DispositionWriteFailed}
	r := newStripeRouter(eng, &fakeVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewBufferString(`{}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyPayment_MissingToken(t *testing.T) {
	r := newStripeRouter(&fakeEngine{}, &fakeVerifier{uid: "u1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", bytes.NewBufferString(`{"paymentIntentId":"pi_1"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyPayment_InvalidToken(t *testing.T) {
	r := newStripeRouter(&fakeEngine{}, &fakeVerifier{err: errors.New("expired")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", bytes.NewBufferString(`{"paymentIntentId":"pi_1"}`))
	req.Header.Set("Authorization", "Bearer stale")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyPayment_NotOwner(t *testing.T) {
	eng := &fakeEngine{verifyErr: reconciliation.ErrNotOwner}
	r := newStripeRouter(eng, &fakeVerifier{uid: "u1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", bytes.NewBufferString(`{"paymentIntentId":"pi_1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerifyPayment_OK(t *testing.T) {
	eng := &fakeEngine{verifyRes: &reconciliation.VerifyPaymentResult{
		PaymentIntentID:  "pi_1",
		Status:           "succeeded",
		Processed:        true,
		WebhookProcessed: true,
	}}
	r := newStripeRouter(eng, &fakeVerifier{uid: "u1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", bytes.NewBufferString(`{"paymentIntentId":"pi_1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pi_1", body["paymentIntentId"])
	require.Equal(t, true, body["webhookProcessed"])
}

func TestVerifyPayment_MissingIntentID(t *testing.T) {
	r := newStripeRouter(&fakeEngine{}, &fakeVerifier{uid: "u1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
