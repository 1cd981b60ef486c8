package routes

import (
	"github.com/banterhq/banter/presentation/controllers/auth"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(router *gin.RouterGroup, controller auth.AuthController) {
	group := router.Group("/auth")
	{
		group.POST("/register", controller.Register)
		group.POST("/login", controller.Login)
		group.POST("/refresh", controller.Refresh)
		group.POST("/logout", controller.Logout)
	}
}
