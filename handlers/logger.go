package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/middleware"
	"salonbook/models"
	"salonbook/utils"
)

// getLogger retrieves the request-scoped logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// mustCaller returns the authenticated caller or writes 401.
func mustCaller(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return models.Caller{}, false
	}
	return caller, true
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this resource"})
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
