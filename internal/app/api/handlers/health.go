package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// @Summary      Service metadata
// @Description  Returns API name, version and the route map.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func ApiRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":         "Workshop Management System API",
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"version":         "2.0.0",
			"payment_methods": []string{"stripe", "paypal"},
			"routes": gin.H{
				"stripe": []string{
					"POST /createPaymentIntent",
					"POST /verifyPayment",
					"POST /stripeWebhook",
				},
				"paypal": []string{
					"POST /createPayPalOrder",
					"POST /capturePayPalOrder",
					"POST /verifyPayPalPayment",
				},
				"general": []string{
					"GET /",
					"GET /health",
				},
			},
		})
	}
}

// @Summary      Health check
// @Description  Liveness plus per-dependency configuration status.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func ApiHealth(cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := func(ok bool) string {
			if ok {
				return "configured"
			}
			return "not configured"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"firebase": configured(cfg.Firebase.ProjectID != ""),
				"stripe":   configured(cfg.Stripe.SecretKey != ""),
				"paypal":   configured(cfg.PayPal.ClientID != "" && cfg.PayPal.ClientSecret != ""),
			},
		})
	}
}

func RegisterHealthRoutes(r gin.IRouter, cfg *cfgpkg.Config) {
	r.GET("/", ApiRoot())
	r.GET("/health", ApiHealth(cfg))
}
