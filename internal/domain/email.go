package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Notification kinds. Each kind maps to an email template of the same name.
const (
	NotificationWelcome        = "welcome"
	NotificationEventUpdated   = "event_updated"
	NotificationEventCancelled = "event_cancelled"
)

// Notification is a single message addressed to one recipient.
type Notification struct {
	Kind       string
	Email      string
	Name       string
	EventID    string
	EventTitle string
	EventDate  string
	EventTime  string
	Changes    []string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendNotification(ctx context.Context, n *Notification) error
}

// NotificationDispatcher hands notifications to an asynchronous sender. Dispatch never blocks on
// delivery and never reports delivery errors to the caller.
type NotificationDispatcher interface {
	Dispatch(notifications ...Notification)
}
