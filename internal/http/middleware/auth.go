package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fibrelink/backend/internal/auth"
)

const principalKey = "principal"

// Auth requires a Bearer token on every request it guards and stores the
// verified principal in the gin context.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(c, "Missing bearer token")
			return
		}

		p, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Principal returns the authenticated principal set by Auth.
func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHENTICATED",
			"message": message,
		},
	})
}
