// Package respond writes the two response shapes the API uses: an {"error":{code,message}}
// envelope for resource endpoints and a flat {"error": message, ...} body for generation.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// Context keys written by the middleware package; repeated here to avoid an import cycle.
const (
	RequestIDKey = "requestId"
	UserIDKey    = "userId"
)

// ErrorBody is the envelope payload for resource endpoints.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error aborts with {"error":{code,message,details}}.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := requestFields(c, status, message)
	fields["code"] = code
	telemetry.Warn("http.error", fields)
	c.AbortWithStatusJSON(status, gin.H{"error": ErrorBody{Code: code, Message: message, Details: details}})
}

// Failure aborts with {"error": message} plus diagnostics at the top level. A diagnostics
// entry named "error" is ignored.
func Failure(c *gin.Context, status int, message string, diagnostics map[string]any) {
	telemetry.Error("http.failure", requestFields(c, status, message))

	body := make(gin.H, len(diagnostics)+1)
	for k, v := range diagnostics {
		body[k] = v
	}
	body["error"] = message
	c.AbortWithStatusJSON(status, body)
}

func requestFields(c *gin.Context, status int, message string) map[string]any {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(RequestIDKey),
	}
	if userID := c.GetString(UserIDKey); userID != "" {
		fields["user_id"] = userID
	}
	return fields
}
