package routes

import (
	"github.com/banterhq/banter/presentation/controllers/credential"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

func CredentialRoutes(router *gin.RouterGroup, controller credential.CredentialController) {
	group := router.Group("/credentials")
	group.Use(middlewares.RequireAuth(), middlewares.RequireUser())
	{
		group.POST("", controller.Issue)
		group.GET("", controller.List)
		group.DELETE("/:id", controller.Revoke)
	}
}
