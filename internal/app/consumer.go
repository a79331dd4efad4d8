package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirankattii/Leave-approval/internal/config"
	"github.com/kirankattii/Leave-approval/internal/events"
	"github.com/kirankattii/Leave-approval/internal/messaging/kafka/consumer"
	"github.com/kirankattii/Leave-approval/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer delivers notification emails from the kafka topic until
// interrupted. Without SMTP credentials it falls back to the log mailer
// so development environments never need a mail account.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	var mailer notification.Mailer
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		mailer = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		logger.Info("using SMTP mailer", zap.String("host", cfg.SMTPHost))
	} else {
		mailer = notification.NewLogMailer(logger)
		logger.Warn("SMTP not configured, emails will only be logged")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          events.NotificationEmailTopic,
		GroupID:        "leave-approval-notification-email",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeNotificationEmails(ctx, reader, mailer, cfg.BackendURL, cfg.FrontendURL, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
