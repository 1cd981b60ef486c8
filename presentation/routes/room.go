package routes

import (
	"github.com/banterhq/banter/presentation/controllers/message"
	"github.com/banterhq/banter/presentation/controllers/room"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

func RoomRoutes(router *gin.RouterGroup, controller room.RoomController, messages message.MessageController) {
	rooms := router.Group("/rooms")
	rooms.Use(middlewares.RequireAuth())
	{
		rooms.GET("", controller.ListRooms)
		rooms.GET("/:id", controller.GetRoom)
		rooms.GET("/:id/members", controller.ListMembers)

		rooms.GET("/:id/messages", messages.GetHistory)
		rooms.POST("/:id/messages", messages.SendMessage)

		userOnly := rooms.Group("")
		userOnly.Use(middlewares.RequireUser())
		{
			userOnly.POST("", controller.CreateRoom)
			userOnly.DELETE("/:id", controller.DeactivateRoom)
			userOnly.POST("/:id/join", controller.JoinRoom)
			userOnly.POST("/:id/leave", controller.LeaveRoom)
			userOnly.POST("/:id/members/:identityId/ban", controller.BanMember)
			userOnly.POST("/:id/members/:identityId/unban", controller.UnbanMember)
		}
	}

	me := router.Group("/me")
	me.Use(middlewares.RequireAuth(), middlewares.RequireUser())
	{
		me.GET("/rooms", controller.ListMyRooms)
	}
}
