package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/utils"
)

// CallerKey is the gin context key holding the authenticated models.Caller.
const CallerKey = "caller"

// CallerRecorder is told about every authenticated caller.
type CallerRecorder interface {
	Remember(ctx context.Context, caller models.Caller)
}

// JWTAuthMiddleware validates the bearer token and stores the caller in the context.
func JWTAuthMiddleware(recorder CallerRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			zap.L().Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		caller := claims.Caller()
		if recorder != nil {
			recorder.Remember(c.Request.Context(), caller)
		}
		c.Set(CallerKey, caller)
		c.Next()
	}
}

// GetCaller returns the caller stored by JWTAuthMiddleware.
func GetCaller(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}
