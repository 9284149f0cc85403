package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/cron"
	"salonbook/utils"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Sweeper cron.Sweeper
}

func NewAdminHandler(sweeper cron.Sweeper) *AdminHandler {
	return &AdminHandler{Sweeper: sweeper}
}

// ReconcileHandler handles POST /api/admin/reconcile by running one sweep inline.
func (ah *AdminHandler) ReconcileHandler(c *gin.Context) {
	report, err := ah.Sweeper.Sweep(c.Request.Context())
	if err != nil {
		zap.L().Error("Manual reconcile failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Reconcile failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

// HealthHandler handles GET /health from the latest monitor snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
