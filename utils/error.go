package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/booking"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code         string               `json:"code,omitempty"`
	Message      string               `json:"message"`
	Details      string               `json:"details,omitempty"`
	Alternatives *models.Alternatives `json:"alternatives,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

var statusByCode = map[string]int{
	booking.CodeSlotUnavailable:     http.StatusConflict,
	booking.CodeAlreadyTerminal:     http.StatusConflict,
	booking.CodeNotFound:            http.StatusNotFound,
	booking.CodeBookingCreateFailed: http.StatusServiceUnavailable,
	booking.CodeCompensationFailed:  http.StatusInternalServerError,
	booking.CodeInvalidSlot:         http.StatusBadRequest,
	booking.CodeInvalidRequest:      http.StatusBadRequest,
}

// HTTPStatus maps a booking error to its response status.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[booking.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// BookingErrorJSON writes err using the booking error taxonomy.
func BookingErrorJSON(c *gin.Context, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{Code: booking.CodeOf(err), Message: "Internal Server Error"}

	var be *booking.BookingError
	if errors.As(err, &be) {
		resp.Message = be.Message
		resp.Alternatives = be.Alternatives
	}
	if status >= http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		GetLogger().Debug("request rejected", zap.String("path", c.FullPath()), zap.String("code", resp.Code))
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}
