package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/server/respond"
)

// EngineToken admits only callers presenting the shared X-Engine-Token.
// An empty token closes the route entirely.
func EngineToken(token string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		if len(want) == 0 {
			respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "engine write-back is disabled", nil)
			return
		}
		got := []byte(strings.TrimSpace(c.GetHeader("X-Engine-Token")))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			respond.Unauthorized(c, "invalid engine token")
			return
		}
		c.Set(userIDKey, "engine")
		c.Next()
	}
}
