package notification

import "context"

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers rendered messages. Implementations: SMTP for real
// delivery, a log mailer for development, a memory mailer for tests.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
