package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/api/middleware"
	"github.com/zenova/wms-billing/internal/app/service/statistics"
	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/response"
)

// @Summary      Scan payments
// @Description  Filtered, paginated payment listing for back-office use.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body store.ScanPaymentsRequest true "Scan request"
// @Success      200  {object}  store.ScanPaymentsResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /admin/payments/scan [post]
func ApiScanPayments(payments store.Payments, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req store.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", err.Error())
			return
		}
		if req.Size <= 0 || req.Size > 200 {
			req.Size = 50
		}

		res, err := payments.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("scan_payments_failed", "error", err)
			response.Internal(c, "failed to scan payments", nil)
			return
		}
		response.OK(c, res)
	}
}

// @Summary      Billing overview
// @Description  Invoice counts by status, completed payment volume by method, recent daily volume, active subscriptions.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  statistics.Overview
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Security     BearerAuth
// @Router       /admin/stats [get]
func ApiStats(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := stats.GetOverview(c.Request.Context())
		if err != nil {
			logctx.FromGin(c, log).Errorw("stats_failed", "error", err)
			response.Internal(c, "failed to compute statistics", nil)
			return
		}
		response.OK(c, out)
	}
}

func RegisterAdminRoutes(r gin.IRouter, payments store.Payments, stats *statistics.Service, verifier firebase.TokenVerifier, log *zap.SugaredLogger) {
	grp := r.Group("/admin", middleware.AuthMiddleware(verifier, log))
	grp.POST("/payments/scan", ApiScanPayments(payments, log))
	grp.GET("/stats", ApiStats(stats, log))
}
