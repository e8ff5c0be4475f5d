package auth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/tralvick/backloghub/pkg/utils"
)

// Process-local token blacklist. Tokens expire after 24h anyway, so
// entries are never pruned.
var (
	revokedMu sync.RWMutex
	revoked   = make(map[string]struct{})
)

func revokeToken(token string) {
	revokedMu.Lock()
	revoked[token] = struct{}{}
	revokedMu.Unlock()
}

func isRevoked(token string) bool {
	revokedMu.RLock()
	_, ok := revoked[token]
	revokedMu.RUnlock()
	return ok
}

// AuthMiddleware validates the Bearer token and stores the caller's
// identity in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		if isRevoked(parts[1]) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
