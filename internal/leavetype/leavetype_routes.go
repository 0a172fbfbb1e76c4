package leavetype

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", handler.GetAll)
		types.GET("/options", handler.GetOptions)
		types.GET("/code/:code", handler.GetByCode)
		types.GET("/:id", handler.GetById)
		types.POST("", middleware.RoleMiddleware("staff"), handler.Create)
		types.PUT("/:id", middleware.RoleMiddleware("staff"), handler.Update)
	}
}
