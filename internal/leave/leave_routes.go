package leave

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leave-requests")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.RateLimitByUser(rate.Limit(1), 5), handler.Create)
		leaves.GET("/me", handler.GetMine)
		leaves.GET("/actionable", handler.GetActionable)
		leaves.GET("", middleware.RoleMiddleware("staff"), handler.GetAll)
		leaves.GET("/:id", handler.GetById)
		leaves.POST("/:id/submit", handler.Submit)
		leaves.POST("/:id/decision", middleware.Idempotency(rdb), handler.Decide)
	}
}
