package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/utils"
)

// Identify parses a Bearer token when one is presented and stashes the
// username for rate-limit identity. Requests without a token pass
// through anonymously.
func Identify(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, tokens); ok {
			c.Set(identityKey, claims.Username)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid Bearer token.
func RequireAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}
		c.Set(identityKey, claims.Username)
		c.Next()
	}
}

func bearerClaims(c *gin.Context, tokens *utils.TokenManager) (*utils.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
