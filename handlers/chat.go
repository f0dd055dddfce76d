package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"styledesk/services/conversation"
	"styledesk/utils"
)

// ChatHandler exposes the conversation engine over HTTP. The channel adapter
// (WhatsApp, Telegram, a web widget) is expected to normalize its payload to
// this shape.
type ChatHandler struct {
	Engine conversation.ConversationEngine
}

func NewChatHandler(engine conversation.ConversationEngine) *ChatHandler {
	return &ChatHandler{Engine: engine}
}

// ProcessMessage runs one inbound message through the user's state machine.
func (h *ChatHandler) ProcessMessage(c *gin.Context) {
	var input struct {
		UserID  string `json:"userId" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	reply, err := h.Engine.ProcessMessage(c.Request.Context(), input.UserID, input.Message)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
