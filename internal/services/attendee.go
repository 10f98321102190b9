package services

import (
	"context"
	"fmt"
	"log/slog"

	"virtualevents/internal/domain"
	"virtualevents/internal/metrics"
)

type attendeeService struct {
	registrations domain.RegistrationIndex
	logger        *slog.Logger
}

// NewAttendeeService creates an AttendeeService backed by the registration index.
func NewAttendeeService(registrations domain.RegistrationIndex, logger *slog.Logger) domain.AttendeeService {
	return &attendeeService{registrations: registrations, logger: logger}
}

func (s *attendeeService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.RegistrationResult, error) {
	event, err := s.registrations.Register(ctx, eventID, userID)
	metrics.ObserveRegistration("register", err)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register for event: %w", err)
	}
	s.logger.InfoContext(ctx, "registered for event", "event_id", eventID, "user_id", userID,
		"spots_remaining", event.SpotsRemaining())
	return &domain.RegistrationResult{EventID: event.ID, SpotsRemaining: event.SpotsRemaining()}, nil
}

func (s *attendeeService) UnregisterFromEvent(ctx context.Context, eventID, userID string) (*domain.RegistrationResult, error) {
	event, err := s.registrations.Unregister(ctx, eventID, userID)
	metrics.ObserveRegistration("unregister", err)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("unregister from event: %w", err)
	}
	return &domain.RegistrationResult{EventID: event.ID, SpotsRemaining: event.SpotsRemaining()}, nil
}
