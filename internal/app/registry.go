package app

import (
	"context"
	"database/sql"

	"github.com/eman-cickusic/leave-management/internal/analytics"
	"github.com/eman-cickusic/leave-management/internal/auth"
	"github.com/eman-cickusic/leave-management/internal/balance"
	"github.com/eman-cickusic/leave-management/internal/department"
	"github.com/eman-cickusic/leave-management/internal/employee"
	"github.com/eman-cickusic/leave-management/internal/leave"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka"
	"github.com/eman-cickusic/leave-management/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	analyticsRepo := analytics.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB, db)
	departmentRepo := department.NewRepository(gormDB, db)
	employeeRepo := employee.NewRepository(gormDB, db)
	leaveRepo := leave.NewRepository(gormDB, db)
	leaveTypeRepo := leavetype.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	balanceService := balance.NewService(db, balanceRepo, leaveTypeRepo)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, balanceService, rdb)
	departmentService := department.NewService(db, departmentRepo)
	employeeService := employee.NewService(db, employeeRepo, balanceService, outboxRepo)
	notifier := notification.NewOutboxNotifier(outboxRepo, employeeRepo, leaveTypeRepo)
	leaveService := leave.NewService(db, leaveRepo, balanceService, departmentService, leaveTypeRepo, notifier)
	analyticsService := analytics.NewService(analyticsRepo)
	authService := auth.NewService(authRepo, employeeRepo)

	if err := leaveTypeService.SeedDefaults(context.Background()); err != nil {
		return err
	}

	// --- Handlers ---
	analyticsHandler := analytics.NewHandler(analyticsService)
	authHandler := auth.NewHandler(authService)
	balanceHandler := balance.NewHandler(balanceService)
	departmentHandler := department.NewHandler(departmentService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		analytics.RegisterRoutes(api, analyticsHandler)
		auth.RegisterRoutes(api, authHandler)
		balance.RegisterRoutes(api, balanceHandler)
		department.RegisterRoutes(api, departmentHandler)
		employee.RegisterRoutes(api, employeeHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
		leavetype.RegisterRoutes(api, leaveTypeHandler)
	}

	return nil
}
