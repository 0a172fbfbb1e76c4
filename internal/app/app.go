package app

import (
	"context"
	"database/sql"
	"os"

	"github.com/eman-cickusic/leave-management/internal/auth"
	"github.com/eman-cickusic/leave-management/internal/balance"
	"github.com/eman-cickusic/leave-management/internal/department"
	"github.com/eman-cickusic/leave-management/internal/employee"
	"github.com/eman-cickusic/leave-management/internal/leave"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	"github.com/eman-cickusic/leave-management/internal/middleware"
	"github.com/eman-cickusic/leave-management/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	if err := migrate(gormDB, sqlDB); err != nil {
		return err
	}

	router.Use(middleware.RequestID(), middleware.ContextLogger(zap.L()))

	return registerModules(router, sqlDB, gormDB, rdb)
}

func migrate(gormDB *gorm.DB, sqlDB *sql.DB) error {
	err := gormDB.AutoMigrate(
		&auth.User{},
		&department.Department{},
		&department.ApprovalRule{},
		&employee.Employee{},
		&leavetype.LeaveType{},
		&balance.LeaveBalance{},
		&balance.LeaveQuota{},
		&leave.LeaveRequest{},
		&leave.LeaveApproval{},
	)
	if err != nil {
		return err
	}

	if err := ensureOutboxTable(sqlDB); err != nil {
		return err
	}

	zap.L().Info("database schema migrated")
	return nil
}

// The outbox has no gorm entity: rows are written with raw SQL inside
// business transactions, so its DDL lives here.
func ensureOutboxTable(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
	ON outbox_events (status, created_at);
`)
	return err
}
