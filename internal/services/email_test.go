package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtualevents/internal/domain"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	n := data.(*domain.Notification)
	return "subject " + n.EventTitle, "<p>" + n.Name + "</p>", n.Name, nil
}

func TestEmailService_SendNotification(t *testing.T) {
	n := &domain.Notification{
		Kind:       domain.NotificationEventCancelled,
		Email:      "a@example.com",
		Name:       "Alice",
		EventTitle: "Go night",
	}

	t.Run("renders the kind template and sends", func(t *testing.T) {
		mailer := &fakeMailer{}
		renderer := &fakeRenderer{}
		svc := NewEmailService(mailer, renderer, discardLogger)

		require.NoError(t, svc.SendNotification(context.Background(), n))
		assert.Equal(t, domain.NotificationEventCancelled, renderer.name)
		assert.Equal(t, "a@example.com", mailer.to)
		assert.Equal(t, "subject Go night", mailer.subject)
		assert.Equal(t, "<p>Alice</p>", mailer.html)
		assert.Equal(t, "Alice", mailer.text)
	})

	t.Run("render failure", func(t *testing.T) {
		boom := errors.New("no template")
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: boom}, discardLogger)
		assert.ErrorIs(t, svc.SendNotification(context.Background(), n), boom)
	})

	t.Run("mailer failure", func(t *testing.T) {
		boom := errors.New("smtp down")
		svc := NewEmailService(&fakeMailer{err: boom}, &fakeRenderer{}, discardLogger)
		assert.ErrorIs(t, svc.SendNotification(context.Background(), n), boom)
	})

	t.Run("nil and missing recipient", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, discardLogger)
		assert.Error(t, svc.SendNotification(context.Background(), nil))
		assert.Error(t, svc.SendNotification(context.Background(), &domain.Notification{Kind: domain.NotificationWelcome}))
	})
}
