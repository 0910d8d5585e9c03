package handlers

import (
	"log"
	"net/http"

	"spelling-service/config"
	"spelling-service/internal/auth"
	ws "spelling-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Change allow all origins in prod
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	config *config.Config
}

func NewWebSocketHandler(hub *ws.Hub, cfg *config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		config: cfg,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// Browsers cannot set headers on websocket upgrades, so the token
	// arrives as a query parameter.
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := auth.ValidateAccessToken(token, h.config.Auth.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	classID := c.Query("class_id")
	if classID == "" {
		classID = claims.ClassID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, classID, claims.SchoolID, claims.Role)

	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
