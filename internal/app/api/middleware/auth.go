package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/response"
)

// AuthMiddleware verifies the Bearer ID token and stores the subject uid in
// the gin context under "uid". Requests without a valid token get 401 before
// the handler runs.
func AuthMiddleware(verifier firebase.TokenVerifier, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		uid, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logctx.FromGin(c, log).Infow("auth_token_rejected", "error", err)
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("uid", uid)
		c.Next()
	}
}

// UID returns the authenticated user id set by AuthMiddleware.
func UID(c *gin.Context) string {
	return c.GetString("uid")
}
