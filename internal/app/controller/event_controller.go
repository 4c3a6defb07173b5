package controller

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/websocket"
)

type EventController struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
}

func NewEventController(hub *websocket.Hub, allowedOrigins []string) *EventController {
	return &EventController{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// SubscribeOrders upgrades the connection and streams order events
// GET /api/v1/ws/orders
func (ctrl *EventController) SubscribeOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := ctrl.hub.NewClient(&websocket.Conn{Conn: conn})
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
