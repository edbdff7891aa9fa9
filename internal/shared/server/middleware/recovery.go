package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/server/respond"
	"jobmatch-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A panic after the
// response started cannot change the status, so it is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"error":      rec,
				"stack":      string(debug.Stack()),
			}
			for _, key := range []string{ResumeIDKey, JobIDKey} {
				if v, ok := c.Get(key); ok {
					fields[key] = v
				}
			}
			telemetry.Error("handler.panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Internal(c)
		}()
		c.Next()
	}
}
