package handlers

import (
	"net/http"

	"spelling-service/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler is the polling fallback for clients without a live
// websocket: it answers "is there an active test for this class".
type SessionHandler struct {
	broadcaster *session.Broadcaster
}

func NewSessionHandler(broadcaster *session.Broadcaster) *SessionHandler {
	return &SessionHandler{broadcaster: broadcaster}
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	classID := c.Param("classId")

	cfg, ok := h.broadcaster.CurrentSession(c.Request.Context(), classID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"class_id": classID,
			"active":   false,
		})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
