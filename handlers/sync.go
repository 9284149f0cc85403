package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/utils"
)

// InboxDrainer empties the sync inboxes visible to a caller.
type InboxDrainer interface {
	Drain(ctx context.Context, caller models.Caller) ([]models.SyncMessage, error)
}

type SyncHandler struct {
	Inbox InboxDrainer
}

func NewSyncHandler(inbox InboxDrainer) *SyncHandler {
	return &SyncHandler{Inbox: inbox}
}

// GetMessages handles GET /api/sync/messages. Returned messages are removed from the inbox.
func (h *SyncHandler) GetMessages(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	msgs, err := h.Inbox.Drain(c.Request.Context(), caller)
	if err != nil {
		getLogger(c).Error("failed to drain sync inbox", zap.String("user_id", caller.UserID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read messages", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": orEmpty(msgs)})
}
