package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/service"
)

const (
	// AuthorizationHeader is the header key for the JWT token
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for the JWT token
	BearerPrefix = "Bearer "
	// ClientKey is the context key for the authenticated client name
	ClientKey = "client"
)

// AuthMiddleware requires a valid bearer token when the token service is
// enabled. Without a configured secret every request passes.
func AuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		if token == "" {
			unauthorized(c, "Token is required")
			return
		}

		client, err := tokens.Validate(token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ClientKey, client)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, domain.Result{
		Success: false,
		Message: message,
	})
}

// GetClient extracts the authenticated client from the gin context
func GetClient(c *gin.Context) (string, bool) {
	client, exists := c.Get(ClientKey)
	if !exists {
		return "", false
	}
	name, ok := client.(string)
	return name, ok
}
