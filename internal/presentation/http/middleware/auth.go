package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/infrastructure/backend"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/response"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/utils"
)

// AuthConfig configures the operator authentication middleware
type AuthConfig struct {
	// Required rejects requests that carry no bearer token.
	Required bool
	Now      func() time.Time
}

// AuthMiddleware reads the operator's backend token. The token is forwarded
// to the backend, which verifies it; here it is only decoded to identify the
// operator and to reject tokens that have already expired.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if cfg.Required {
				response.Unauthorized(c, "Authorization header is required")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ParseOperatorToken(tokenString, now())
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				response.Error(c, apperror.ErrTokenExpired)
			} else {
				response.Error(c, apperror.ErrInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set("operator", claims.Operator())
		c.Set("operator_name", claims.Name)

		// Forward the token to backend calls made for this request
		ctx := backend.WithToken(c.Request.Context(), tokenString)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetOperator retrieves the operator id from gin context
func GetOperator(c *gin.Context) string {
	operator, exists := c.Get("operator")
	if !exists {
		return ""
	}
	s, _ := operator.(string)
	return s
}
