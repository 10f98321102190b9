package services

import (
	"context"
	"fmt"
	"log/slog"

	"virtualevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendNotification renders the template named after the notification kind and sends it to the recipient.
func (s *emailService) SendNotification(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is nil")
	}
	if n.Email == "" {
		return fmt.Errorf("%s notification has no recipient", n.Kind)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(n.Kind, n)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", n.Kind, err)
	}
	if err := s.mailer.Send(ctx, n.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", n.Kind, err)
	}
	s.logger.DebugContext(ctx, "email sent", "kind", n.Kind, "to", n.Email, "event_id", n.EventID)
	return nil
}
