package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kirankattii/Leave-approval/internal/events"
	"github.com/kirankattii/Leave-approval/internal/messaging/kafka"
	"github.com/kirankattii/Leave-approval/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher hands outbound messages to the delivery pipeline. Every method
// is best-effort: failures are logged and swallowed so a notification can
// never turn a committed state change into a reported error. No method
// returns an error, so callers cannot get this wrong.
//
//go:generate mockgen -source=dispatcher.go -destination=mock/dispatcher_mock.go -package=mock
type Dispatcher interface {
	LeaveSubmitted(ctx context.Context, ev events.LeaveSubmittedEvent)
	LeaveActioned(ctx context.Context, ev events.LeaveActionedEvent)
	PasswordResetOTP(ctx context.Context, ev events.PasswordResetOTPEvent)
}

type outboxDispatcher struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewOutboxDispatcher(outbox kafka.OutboxRepository, logger ...*zap.Logger) Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	return &outboxDispatcher{outbox: outbox, logger: l}
}

func (d *outboxDispatcher) LeaveSubmitted(ctx context.Context, ev events.LeaveSubmittedEvent) {
	ev.EventType = events.TypeLeaveSubmitted
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	d.enqueue(ctx, "leave", ev.LeaveID, ev.EventType, ev)
}

func (d *outboxDispatcher) LeaveActioned(ctx context.Context, ev events.LeaveActionedEvent) {
	ev.EventType = events.TypeLeaveActioned
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	d.enqueue(ctx, "leave", ev.LeaveID, ev.EventType, ev)
}

func (d *outboxDispatcher) PasswordResetOTP(ctx context.Context, ev events.PasswordResetOTPEvent) {
	ev.EventType = events.TypePasswordResetOTP
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	// aggregate_id is a uuid column; the email lives in the payload only
	d.enqueue(ctx, "auth", uuid.New().String(), ev.EventType, ev)
}

func (d *outboxDispatcher) enqueue(ctx context.Context, aggregateType, aggregateID, eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("notification payload marshal failed",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	event := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         events.NotificationEmailTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}

	if err := d.outbox.Create(ctx, event); err != nil {
		d.logger.Error("notification enqueue failed",
			zap.String("event_type", eventType),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err),
		)
		return
	}

	d.logger.Debug("notification enqueued",
		zap.String("event_type", eventType),
		zap.String("aggregate_id", aggregateID),
	)
}
