package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/api/middleware"
	"github.com/zenova/wms-billing/internal/app/service/notification"
	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/response"
)

type sendReminderRequest struct {
	InvoiceID string `json:"invoiceId" binding:"required"`
}

// @Summary      Send payment reminder
// @Description  Manually triggers the push-reminder path for one invoice. Operational testing hook; bypasses the per-day dedup log.
// @Tags         Notification
// @Accept       json
// @Produce      json
// @Param        request body handlers.sendReminderRequest true "Reminder request"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /sendPaymentReminder [post]
func ApiSendPaymentReminder(invoices store.Invoices, pusher notification.Pusher, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}

		inv, err := invoices.GetInvoice(c.Request.Context(), req.InvoiceID)
		if err != nil {
			logctx.FromGin(c, log).Errorw("invoice_load_failed", "invoice_id", req.InvoiceID, "error", err)
			response.Internal(c, "failed to load invoice", nil)
			return
		}
		if inv == nil {
			response.BadRequest(c, "invoice not found", nil)
			return
		}

		dueDate := inv.DueAt.Format("2006-01-02")
		if err := pusher.SendPaymentReminder(c.Request.Context(), inv.UserID, inv.ID, inv.TotalAmount, dueDate); err != nil {
			logctx.FromGin(c, log).Errorw("manual_reminder_failed", "invoice_id", inv.ID, "error", err)
			response.Internal(c, "failed to send reminder", nil)
			return
		}
		response.OK(c, gin.H{"sent": true})
	}
}

// @Summary      Send test notification
// @Description  Sends a test push to the authenticated caller's registered devices.
// @Tags         Notification
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /testNotification [post]
func ApiTestNotification(pusher notification.Pusher, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UID(c)
		dueDate := time.Now().Format("2006-01-02")
		if err := pusher.SendPaymentReminder(c.Request.Context(), uid, "test-invoice", 0, dueDate); err != nil {
			logctx.FromGin(c, log).Errorw("test_notification_failed", "uid", uid, "error", err)
			response.Internal(c, "failed to send test notification", nil)
			return
		}
		response.OK(c, gin.H{"sent": true})
	}
}

func RegisterNotificationRoutes(r gin.IRouter, invoices store.Invoices, pusher notification.Pusher, verifier firebase.TokenVerifier, log *zap.SugaredLogger) {
	auth := middleware.AuthMiddleware(verifier, log)
	r.POST("/sendPaymentReminder", auth, ApiSendPaymentReminder(invoices, pusher, log))
	r.POST("/testNotification", auth, ApiTestNotification(pusher, log))
}
