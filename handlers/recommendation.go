package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/services/recommendation"
	"salonbook/utils"
)

type RecommendationHandler struct {
	Engine recommendation.Engine
}

func NewRecommendationHandler(engine recommendation.Engine) *RecommendationHandler {
	return &RecommendationHandler{Engine: engine}
}

// GetRecommendation handles GET /api/users/:id/recommendation. 204 means nothing to suggest.
func (h *RecommendationHandler) GetRecommendation(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID := c.Param("id")
	if !caller.CanActForUser(userID) {
		forbidden(c)
		return
	}
	rec, err := h.Engine.Recommend(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("recommendation failed", zap.String("user_id", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to compute recommendation", "")
		return
	}
	if rec == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, rec)
}
