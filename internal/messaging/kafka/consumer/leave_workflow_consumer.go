package consumer

import (
	"context"
	"encoding/json"

	"github.com/eman-cickusic/leave-management/internal/events"
	"github.com/eman-cickusic/leave-management/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveWorkflow reads the workflow topics and turns each event into
// an email. Messages that cannot be decoded are committed and skipped;
// delivery failures leave the message uncommitted for a retry.
func ConsumeLeaveWorkflow(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_workflow")
	log.Info("leave workflow consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave workflow consumer stopped")
				return
			}
			log.Error("fetch leave workflow message failed", zap.Error(err))
			continue
		}

		email, ok, decodeErr := composeFromMessage(msg)
		if decodeErr != nil {
			log.Error("decode leave workflow event failed",
				zap.String("topic", msg.Topic),
				zap.Error(decodeErr),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if !ok {
			// No recipient on the event, nothing to send.
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := mailer.Send(email.To, email.Subject, email.Body); err != nil {
			log.Error("send leave workflow email failed",
				zap.String("topic", msg.Topic),
				zap.String("to", email.To),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave workflow message failed", zap.Error(err))
			continue
		}

		log.Info("leave workflow email dispatched",
			zap.String("topic", msg.Topic),
			zap.String("to", email.To),
		)
	}
}

func composeFromMessage(msg kafkago.Message) (notification.Email, bool, error) {
	if msg.Topic == events.LeaveApprovalPendingTopic {
		var event events.LeaveApprovalEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return notification.Email{}, false, err
		}
		email, ok := notification.ComposeApprovalEmail(event)
		return email, ok, nil
	}

	var event events.LeaveRequestEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return notification.Email{}, false, err
	}
	email, ok := notification.ComposeRequestEmail(msg.Topic, event)
	return email, ok, nil
}
