package employee

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	empls := r.Group("/employees")
	empls.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("staff"))
	{
		empls.GET("", handler.GetAll)
		empls.GET("/:id", handler.GetById)
		empls.POST("", handler.Create)
		empls.PUT("/:id", handler.Update)
	}
}
