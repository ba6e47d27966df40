package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockreceipt/internal/core/apperror"
	appctx "stockreceipt/internal/core/context"
)

// JWTValidator validates a bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.Operator, error)
}

// Auth requires a valid bearer token and puts the operator on the context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		op, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Request = c.Request.WithContext(appctx.WithOperator(c.Request.Context(), op))
		c.Set("operator_id", op.OperatorID)

		c.Next()
	}
}

// RequireRole lets the request through only if the operator has one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetOperator(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, role := range roles {
			if appctx.HasRole(ctx, role) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
