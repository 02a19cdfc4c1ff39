package routes

import (
	"github.com/gin-gonic/gin"

	"daymark-app/daymark/services"
)

// RegisterWebSocketRoutes exposes the push channel. The socket is
// server-to-client only; intents go through the REST surface.
func RegisterWebSocketRoutes(router *gin.Engine, wsService services.WebSocketServiceInterface) {
	router.GET("/api/v1/ws", func(c *gin.Context) {
		wsService.HandleConnection(c)
	})
}
