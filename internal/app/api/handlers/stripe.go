package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/api/middleware"
	"github.com/zenova/wms-billing/internal/app/service/reconciliation"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/internal/platform/stripegw"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/response"
)

type createPaymentIntentRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required"`
	PlanID   string `json:"planId" binding:"required"`
}

type createPaymentIntentResponse struct {
	ClientSecret   string `json:"clientSecret"`
	CustomerID     string `json:"customerId"`
	EphemeralKey   string `json:"ephemeralKey"`
	PaymentIntent  string `json:"paymentIntentId"`
	PublishableKey string `json:"publishableKey,omitempty"`
}

// @Summary      Create card payment intent
// @Description  Creates a provider payment intent for a plan purchase and returns the client handles needed to confirm it.
// @Tags         Card
// @Accept       json
// @Produce      json
// @Param        request body handlers.createPaymentIntentRequest true "Intent request"
// @Success      200  {object}  handlers.createPaymentIntentResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /createPaymentIntent [post]
func ApiCreatePaymentIntent(gw stripegw.Gateway, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		out, err := gw.CreatePaymentIntent(c.Request.Context(), &stripegw.CreateIntentInput{
			Amount:   req.Amount,
			Currency: req.Currency,
			PlanID:   req.PlanID,
			UserID:   middleware.UID(c),
		})
		if err != nil {
			logctx.FromGin(c, log).Errorw("create_intent_failed", "plan_id", req.PlanID, "error", err)
			var sErr *stripe.Error
			if errors.As(err, &sErr) {
				response.BadRequest(c, "payment intent creation rejected", sErr.Msg)
				return
			}
			response.Internal(c, "failed to create payment intent", nil)
			return
		}

		response.OK(c, createPaymentIntentResponse{
			ClientSecret:  out.ClientSecret,
			CustomerID:    out.CustomerID,
			EphemeralKey:  out.EphemeralKey,
			PaymentIntent: out.ID,
		})
	}
}

type verifyPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// @Summary      Verify card payment
// @Description  Cross-references provider-side intent status with the local payment record. Callers may only verify their own intents.
// @Tags         Card
// @Accept       json
// @Produce      json
// @Param        request body handlers.verifyPaymentRequest true "Verify request"
// @Success      200  {object}  reconciliation.VerifyPaymentResult
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /verifyPayment [post]
func ApiVerifyPayment(eng reconciliation.Engine, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		res, err := eng.VerifyPayment(c.Request.Context(), middleware.UID(c), req.PaymentIntentID)
		if err != nil {
			if errors.Is(err, reconciliation.ErrNotOwner) {
				response.Forbidden(c, "payment intent does not belong to the authenticated user")
				return
			}
			logctx.FromGin(c, log).Errorw("verify_payment_failed", "intent_id", req.PaymentIntentID, "error", err)
			var sErr *stripe.Error
			if errors.As(err, &sErr) {
				response.BadRequest(c, "payment intent lookup rejected", sErr.Msg)
				return
			}
			response.Internal(c, "failed to verify payment", nil)
			return
		}
		response.OK(c, res)
	}
}

// @Summary      Card provider webhook
// @Description  Receives provider event notifications. Signature failure gets 400; everything past verification is acknowledged 200.
// @Tags         Card
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  response.ErrorBody
// @Router       /stripeWebhook [post]
func ApiStripeWebhook(eng reconciliation.Engine, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The signature covers the exact bytes on the wire; no binding here.
		payload, err := c.GetRawData()
		if err != nil {
			response.BadRequest(c, "unreadable payload", nil)
			return
		}

		disp, err := eng.HandleStripeEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logctx.FromGin(c, log).Infow("webhook_rejected", "error", err)
			response.BadRequest(c, "webhook signature verification failed", nil)
			return
		}

		logctx.FromGin(c, log).Infow("webhook_acknowledged", "disposition", disp)
		response.OK(c, gin.H{"received": true})
	}
}

func RegisterStripeRoutes(r gin.IRouter, eng reconciliation.Engine, gw stripegw.Gateway, verifier firebase.TokenVerifier, log *zap.SugaredLogger) {
	auth := middleware.AuthMiddleware(verifier, log)
	r.POST("/createPaymentIntent", auth, ApiCreatePaymentIntent(gw, log))
	r.POST("/verifyPayment", auth, ApiVerifyPayment(eng, log))
	r.POST("/stripeWebhook", ApiStripeWebhook(eng, log))
}
