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

	"github.com/zenova/wms-billing/internal/platform/paypal"
)

type fakePayPal struct {
	order      *paypal.Order
	err        error
	gotCapture string
}

func (f *fakePayPal) CreateOrder(context.Context, *paypal.CreateOrderInput) (*paypal.Order, error) {
	return f.order, f.err
}

func (f *fakePayPal) CaptureOrder(_ context.Context, orderID string) (*paypal.Order, error) {
	f.gotCapture = orderID
	return f.order, f.err
}

func (f *fakePayPal) GetOrder(context.Context, string) (*paypal.Order, error) {
	return f.order, f.err
}

func newPayPalRouter(pp *fakePayPal, eng *fakeEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPayPalRoutes(r, pp, eng, &fakeVerifier{uid: "u1"}, zap.NewNop().Sugar())
	return r
}

func TestCreatePayPalOrder_ReturnsApprovalLink(t *testing.T) {
	pp := &fakePayPal{order: &paypal.Order{
		ID:     "ORDER-1",
		Status: "CREATED",
		Links: []paypal.Link{
			{Href: "https://provider.example/self", Rel: "self"},
			{Href: "https://provider.example/approve", Rel: "approve"},
		},
	}}
	r := newPayPalRouter(pp, &fakeEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/createPayPalOrder",
		bytes.NewBufferString(`{"amount":120.5,"currency":"MYR","invoiceId":"inv-1","serviceCategory":"Major Repair"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ORDER-1", body["orderId"])
	require.Equal(t, "https://provider.example/approve", body["approvalUrl"])
}

func TestCreatePayPalOrder_ProviderRejectionPassthrough(t *testing.T) {
	providerBody := `{"name":"INVALID_REQUEST","details":[{"issue":"CURRENCY_NOT_SUPPORTED"}]}`
	pp := &fakePayPal{err: &paypal.APIError{StatusCode: 422, Body: json.RawMessage(providerBody)}}
	r := newPayPalRouter(pp, &fakeEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/createPayPalOrder",
		bytes.NewBufferString(`{"amount":10,"currency":"XXX","invoiceId":"inv-1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.JSONEq(t, providerBody, string(body["details"]), "provider detail must pass through verbatim")
}

func TestCapturePayPalOrder_RecordsSettlement(t *testing.T) {
	pp := &fakePayPal{order: &paypal.Order{
		ID:     "ORDER-1",
		Status: "COMPLETED",
		PurchaseUnits: []paypal.PurchaseUnit{{
			ReferenceID: "inv-1",
			Payments: &paypal.Payments{Captures: []paypal.Capture{{
				ID: "CAP-1", Status: "COMPLETED",
				Amount: &paypal.Amount{CurrencyCode: "MYR", Value: "120.50"},
			}}},
		}},
	}}
	eng := &fakeEngine{}
	r := newPayPalRouter(pp, eng)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/capturePayPalOrder",
		bytes.NewBufferString(`{"orderId":"ORDER-1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ORDER-1", pp.gotCapture)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "COMPLETED", body["status"])
	require.Equal(t, "CAP-1", body["captureId"])
}

func TestCapturePayPalOrder_SettlementFailureSurfaces(t *testing.T) {
	pp := &fakePayPal{order: &paypal.Order{ID: "ORDER-1", Status: "COMPLETED"}}
	eng := &fakeEngine{captureErr: errors.New("store down")}
	r := newPayPalRouter(pp, eng)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/capturePayPalOrder",
		bytes.NewBufferString(`{"orderId":"ORDER-1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVerifyPayPalPayment_ReportsPaidAndAmount(t *testing.T) {
	pp := &fakePayPal{order: &paypal.Order{
		ID:     "ORDER-1",
		Status: "COMPLETED",
		PurchaseUnits: []paypal.PurchaseUnit{{
			ReferenceID: "inv-1",
			Amount:      &paypal.Amount{CurrencyCode: "MYR", Value: "120.50"},
		}},
	}}
	r := newPayPalRouter(pp, &fakeEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayPalPayment",
		bytes.NewBufferString(`{"orderId":"ORDER-1"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OrderID string         `json:"orderId"`
		Status  string         `json:"status"`
		Amount  *paypal.Amount `json:"amount"`
		Paid    bool           `json:"paid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Paid)
	require.NotNil(t, body.Amount)
	require.Equal(t, "MYR", body.Amount.CurrencyCode)
	require.Equal(t, "120.50", body.Amount.Value)
}

func TestVerifyPayPalPayment_NoPurchaseUnitsOmitsAmount(t *testing.T) {
	pp := &fakePayPal{order: &paypal.Order{ID: "ORDER-2", Status: "CREATED"}}
	r := newPayPalRouter(pp, &fakeEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verifyPayPalPayment",
		bytes.NewBufferString(`{"orderId":"ORDER-2"}`))
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["paid"])
	require.NotContains(t, body, "amount")
}

func TestPayPalRoutes_RequireAuth(t *testing.T) {
	r := newPayPalRouter(&fakePayPal{}, &fakeEngine{})

	for _, path := range []string{"/createPayPalOrder", "/capturePayPalOrder", "/verifyPayPalPayment"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
