package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/api/middleware"
	"github.com/zenova/wms-billing/internal/app/service/reconciliation"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/internal/platform/paypal"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/response"
)

type createOrderRequest struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"required"`
	InvoiceID       string  `json:"invoiceId" binding:"required"`
	ServiceCategory string  `json:"serviceCategory"`
}

type createOrderResponse struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approvalUrl"`
}

// paypalFailure maps a wallet-network error to a response: provider
// rejections pass the provider body through verbatim as details, everything
// else is a plain 500.
func paypalFailure(c *gin.Context, log *zap.SugaredLogger, op string, err error) {
	logctx.FromGin(c, log).Errorw("paypal_call_failed", "op", op, "error", err)
	var apiErr *paypal.APIError
	if errors.As(err, &apiErr) {
		response.Internal(c, "wallet provider rejected the request", apiErr.Body)
		return
	}
	response.Internal(c, "wallet provider call failed", nil)
}

// @Summary      Create wallet order
// @Description  Creates a wallet-network order for an invoice and returns the approval link the client redirects to.
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request body handlers.createOrderRequest true "Order request"
// @Success      200  {object}  handlers.createOrderResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /createPayPalOrder [post]
func ApiCreatePayPalOrder(pp paypal.Client, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		order, err := pp.CreateOrder(c.Request.Context(), &paypal.CreateOrderInput{
			Amount:      req.Amount,
			Currency:    req.Currency,
			InvoiceID:   req.InvoiceID,
			Description: req.ServiceCategory,
			UserID:      middleware.UID(c),
		})
		if err != nil {
			paypalFailure(c, log, "create_order", err)
			return
		}

		response.OK(c, createOrderResponse{
			OrderID:     order.ID,
			Status:      order.Status,
			ApprovalURL: order.ApprovalURL(),
		})
	}
}

type captureOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type captureOrderResponse struct {
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	CaptureID string `json:"captureId,omitempty"`
}

// @Summary      Capture wallet order
// @Description  Captures an approved order, records the payment, and settles the invoice.
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request body handlers.captureOrderRequest true "Capture request"
// @Success      200  {object}  handlers.captureOrderResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /capturePayPalOrder [post]
func ApiCapturePayPalOrder(pp paypal.Client, eng reconciliation.Engine, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req captureOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		order, err := pp.CaptureOrder(c.Request.Context(), req.OrderID)
		if err != nil {
			paypalFailure(c, log, "capture_order", err)
			return
		}

		if err := eng.RecordWalletCapture(c.Request.Context(), middleware.UID(c), order); err != nil {
			// The provider captured the money; surface the settlement
			// failure instead of pretending the order is fine.
			logctx.FromGin(c, log).Errorw("wallet_settlement_failed", "order_id", order.ID, "error", err)
			response.Internal(c, "captured but failed to record payment", nil)
			return
		}

		out := captureOrderResponse{OrderID: order.ID, Status: order.Status}
		if capture := order.FirstCapture(); capture != nil {
			out.CaptureID = capture.ID
		}
		response.OK(c, out)
	}
}

type verifyPayPalRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type verifyPayPalResponse struct {
	OrderID string         `json:"orderId"`
	Status  string         `json:"status"`
	Amount  *paypal.Amount `json:"amount,omitempty"`
	Paid    bool           `json:"paid"`
}

// @Summary      Verify wallet payment
// @Description  Reads provider-side order status.
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request body handlers.verifyPayPalRequest true "Verify request"
// @Success      200  {object}  handlers.verifyPayPalResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /verifyPayPalPayment [post]
func ApiVerifyPayPalPayment(pp paypal.Client, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyPayPalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		order, err := pp.GetOrder(c.Request.Context(), req.OrderID)
		if err != nil {
			paypalFailure(c, log, "get_order", err)
			return
		}

		out := verifyPayPalResponse{
			OrderID: order.ID,
			Status:  order.Status,
			Paid:    order.Status == "COMPLETED",
		}
		if len(order.PurchaseUnits) > 0 {
			out.Amount = order.PurchaseUnits[0].Amount
		}
		response.OK(c, out)
	}
}

func RegisterPayPalRoutes(r gin.IRouter, pp paypal.Client, eng reconciliation.Engine, verifier firebase.TokenVerifier, log *zap.SugaredLogger) {
	auth := middleware.AuthMiddleware(verifier, log)
	r.POST("/createPayPalOrder", auth, ApiCreatePayPalOrder(pp, log))
	r.POST("/capturePayPalOrder", auth, ApiCapturePayPalOrder(pp, eng, log))
	r.POST("/verifyPayPalPayment", auth, ApiVerifyPayPalPayment(pp, log))
}
