package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the failure envelope used by every endpoint: {error, details?}.
// Details carries provider payloads verbatim when an upstream call failed.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// BadRequest responds 400: missing/invalid input or webhook signature failure.
func BadRequest(c *gin.Context, msg string, details any) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: msg, Details: details})
}

// Unauthorized responds 401: missing or invalid bearer credential.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Error: msg})
}

// Forbidden responds 403: credential valid but does not own the resource.
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorBody{Error: msg})
}

// Internal responds 500 with the failure detail string.
func Internal(c *gin.Context, msg string, details any) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: msg, Details: details})
}

// OK responds 200 with an endpoint-specific body.
func OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
