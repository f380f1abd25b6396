package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 envelope. gin's own writer is
// silenced so the panic is reported once, through telemetry.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDOf(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"stage":      c.GetString(StageKey),
			"panic":      rec,
			"stack":      string(debug.Stack()),
		})
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	})
}
