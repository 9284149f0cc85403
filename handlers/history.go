package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	recordsRepo "salonbook/database/repository/records"
	"salonbook/utils"
)

// HistoryHandler reads the visit history.
type HistoryHandler struct {
	History recordsRepo.VisitHistoryRepository
}

func NewHistoryHandler(history recordsRepo.VisitHistoryRepository) *HistoryHandler {
	return &HistoryHandler{History: history}
}

// MasterHistory handles GET /api/masters/:id/history.
func (h *HistoryHandler) MasterHistory(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	masterID := c.Param("id")
	if !caller.CanActForMaster(masterID) {
		forbidden(c)
		return
	}
	records, err := h.History.ListByMaster(c.Request.Context(), masterID)
	if err != nil {
		getLogger(c).Error("failed to read master history", zap.String("master_id", masterID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read history", "")
		return
	}
	c.JSON(http.StatusOK, orEmpty(records))
}

// ClientHistory handles GET /api/users/:id/history.
func (h *HistoryHandler) ClientHistory(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID := c.Param("id")
	if !caller.CanActForUser(userID) {
		forbidden(c)
		return
	}
	records, err := h.History.ListByClient(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("failed to read client history", zap.String("user_id", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read history", "")
		return
	}
	c.JSON(http.StatusOK, orEmpty(records))
}
