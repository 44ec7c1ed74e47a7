package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sparesmart-backend/internal/auth"
)

// ClaimsKey is the gin context key holding the verified token claims.
const ClaimsKey = "claims"

// Auth requires a valid Bearer token when the service has auth enabled.
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := svc.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
