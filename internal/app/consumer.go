package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eman-cickusic/leave-management/internal/events"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka/consumer"
	"github.com/eman-cickusic/leave-management/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads the workflow topics and delivers emails.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	mailer := notification.NewSMTPMailer(logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{kafkaBroker},
		GroupTopics: []string{
			events.LeaveRequestSubmittedTopic,
			events.LeaveApprovalPendingTopic,
			events.LeaveRequestApprovedTopic,
			events.LeaveRequestRejectedTopic,
			events.LeaveRequestUpcomingTopic,
		},
		GroupID:        "leave-management-notifications",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveWorkflow(ctx, reader, mailer, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
