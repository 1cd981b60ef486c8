package routes

import (
	"github.com/banterhq/banter/presentation/controllers/websocket"
	"github.com/gin-gonic/gin"
)

func WebsocketRoutes(router *gin.RouterGroup, controller websocket.WebSocketController) {
	router.GET("/ws", controller.HandleConnection)
}
