package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonbook/models"
)

// RequireRole aborts unless the authenticated caller has one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Role '" + string(caller.Role) + "' may not access this resource",
		})
	}
}
