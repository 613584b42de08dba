package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackedwins/services"
	"stackedwins/utils"
)

// CoachChatHandler sends one message to the AI coach.
func (h *APIHandler) CoachChatHandler(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.svc.Coach.Chat(c.Request.Context(), userID(c), req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// CoachHistoryHandler lists past exchanges with the coach, oldest first.
func (h *APIHandler) CoachHistoryHandler(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultCoachHistoryLimit)
	history, err := h.svc.Coach.History(c.Request.Context(), userID(c), limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
