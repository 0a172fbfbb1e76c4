package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/eman-cickusic/leave-management/internal/balance"
	"github.com/eman-cickusic/leave-management/internal/department"
	"github.com/eman-cickusic/leave-management/internal/employee"
	"github.com/eman-cickusic/leave-management/internal/leave"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka/producer"
	"github.com/eman-cickusic/leave-management/internal/notification"
	"github.com/eman-cickusic/leave-management/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker hosts the outbox publisher and the upcoming-leave reminder job.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

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
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	balanceRepo := balance.NewRepository(gormDB, sqlDB)
	departmentRepo := department.NewRepository(gormDB, sqlDB)
	employeeRepo := employee.NewRepository(gormDB, sqlDB)
	leaveRepo := leave.NewRepository(gormDB, sqlDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB, sqlDB)

	balanceService := balance.NewService(sqlDB, balanceRepo, leaveTypeRepo)
	departmentService := department.NewService(sqlDB, departmentRepo)

	notifier := notification.NewDedupNotifier(
		notification.NewOutboxNotifier(outboxRepo, employeeRepo, leaveTypeRepo),
		rdb,
	)
	leaveService := leave.NewService(sqlDB, leaveRepo, balanceService, departmentService, leaveTypeRepo, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runReminderJob(ctx, leaveService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// runReminderJob nudges employees whose approved leave starts within
// REMINDER_DAYS. It fires once on startup, then hourly; the dedup notifier
// keeps repeat runs from re-sending.
func runReminderJob(ctx context.Context, leaveService leave.Service, logger *zap.Logger) {
	log := logger.Named("reminder")

	withinDays := 2
	if raw := os.Getenv("REMINDER_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			withinDays = parsed
		}
	}

	log.Info("reminder job started", zap.Int("within_days", withinDays))

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		sent, err := leaveService.NotifyUpcoming(ctx, withinDays)
		if err != nil {
			log.Error("reminder sweep failed", zap.Error(err))
		} else if sent > 0 {
			log.Info("reminders dispatched", zap.Int("count", sent))
		}

		select {
		case <-ctx.Done():
			log.Info("reminder job stopped")
			return
		case <-ticker.C:
		}
	}
}
