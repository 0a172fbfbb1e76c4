package analytics

import (
	"github.com/eman-cickusic/leave-management/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	analytics := r.Group("/analytics")
	analytics.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("staff"))
	{
		analytics.GET("", handler.GetSummary)
		analytics.GET("/export/csv", handler.ExportCSV)
		analytics.GET("/export/xlsx", handler.ExportXLSX)
	}
}
