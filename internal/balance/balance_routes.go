package balance

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/me", handler.GetMine)
		balances.GET("/:employeeID", middleware.RoleMiddleware("staff"), handler.GetByEmployee)
		balances.PUT("/:employeeID/quotas", middleware.RoleMiddleware("staff"), handler.AdjustQuotas)
	}
}
