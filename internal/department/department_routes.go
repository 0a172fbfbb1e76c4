package department

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	depts := r.Group("/departments")
	depts.Use(middleware.AuthMiddleware())
	{
		depts.GET("", handler.GetAll)
		depts.GET("/:id", handler.GetById)
		depts.POST("", middleware.RoleMiddleware("staff"), handler.Create)
		depts.PUT("/:id", middleware.RoleMiddleware("staff"), handler.Update)
		depts.DELETE("/:id", middleware.RoleMiddleware("staff"), handler.Delete)
	}
}
