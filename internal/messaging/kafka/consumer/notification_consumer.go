package consumer

import (
	"context"
	"encoding/json"

	"github.com/kirankattii/Leave-approval/internal/events"
	"github.com/kirankattii/Leave-approval/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeNotificationEmails reads the notification topic, renders each
// event into an email, and delivers it through the mailer. Undecodable
// messages are committed and dropped; delivery failures are retried by
// leaving the offset uncommitted.
func ConsumeNotificationEmails(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	backendURL string,
	frontendURL string,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notification_email")
	log.Info("notification email consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification email consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		email, ok := renderMessage(msg.Value, backendURL, frontendURL, log)
		if !ok {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := mailer.Send(ctx, email); err != nil {
			log.Error("email delivery failed",
				zap.String("to", email.To),
				zap.String("subject", email.Subject),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
			continue
		}

		log.Info("notification email sent",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
		)
	}
}

func renderMessage(value []byte, backendURL, frontendURL string, log *zap.Logger) (notification.Message, bool) {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		log.Error("decode notification envelope failed", zap.Error(err))
		return notification.Message{}, false
	}

	switch envelope.EventType {
	case events.TypeLeaveSubmitted:
		var ev events.LeaveSubmittedEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			log.Error("decode leave submitted event failed", zap.Error(err))
			return notification.Message{}, false
		}
		return notification.RenderLeaveActionEmail(ev, backendURL, frontendURL), true

	case events.TypeLeaveActioned:
		var ev events.LeaveActionedEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			log.Error("decode leave actioned event failed", zap.Error(err))
			return notification.Message{}, false
		}
		return notification.RenderLeaveActionedEmail(ev), true

	case events.TypePasswordResetOTP:
		var ev events.PasswordResetOTPEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			log.Error("decode password reset event failed", zap.Error(err))
			return notification.Message{}, false
		}
		return notification.RenderOTPEmail(ev), true

	default:
		log.Warn("unknown notification event type, skipping",
			zap.String("event_type", envelope.EventType),
		)
		return notification.Message{}, false
	}
}
