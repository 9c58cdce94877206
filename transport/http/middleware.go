package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/walletgate/siwn/ports"
)

// AuthMiddleware creates middleware that validates bearer access tokens
// through the identity provider's verifier.
func AuthMiddleware(verifier ports.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		principal, err := verifier.VerifyAccessToken(c.Request.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}
