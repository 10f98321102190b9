package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"virtualevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	dispatcher     domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates an EventService. Schedule changes and cancellations are handed to dispatcher.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatedBy == "" {
		return domain.InvalidInput("event owner is required")
	}
	event.Title = strings.TrimSpace(event.Title)
	if err := event.Validate(); err != nil {
		return err
	}
	event.CreatedAt = s.now()
	event.UpdatedAt = nil
	event.Participants = []string{}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, viewerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return domain.NewEventView(event, viewerID), nil
}

// UpdateEvent applies patch when requesterID owns the event. Ownership and capacity are checked inside
// the repository's critical section; a rejected update leaves the event untouched.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, requesterID string, patch domain.EventPatch) (*domain.Event, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}

	var changed []string
	updated, err := s.eventRepo.Update(ctx, eventID, func(e *domain.Event) error {
		if e.CreatedBy != requesterID {
			return domain.ErrForbidden
		}
		c, err := patch.Apply(e)
		if err != nil {
			return err
		}
		changed = c
		if len(changed) > 0 {
			now := s.now()
			e.UpdatedAt = &now
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("update event: %w", err)
	}

	if domain.ScheduleChanged(changed) {
		s.notifyParticipants(ctx, domain.NotificationEventUpdated, updated, changed)
	}
	return updated, changed, nil
}

// DeleteEvent removes the event and its registrations, then notifies every former participant.
// The returned count is the number of participants at deletion time, regardless of delivery outcome.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, requesterID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	removed, err := s.eventRepo.Delete(ctx, eventID, func(e *domain.Event) error {
		if e.CreatedBy != requesterID {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return 0, err
		}
		return 0, fmt.Errorf("delete event: %w", err)
	}

	s.notifyParticipants(ctx, domain.NotificationEventCancelled, removed, nil)
	return len(removed.Participants), nil
}

func (s *eventService) ListEvents(ctx context.Context, viewerID string, filter domain.EventFilter) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	matched := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	domain.SortEvents(matched)

	views := make([]*domain.EventView, 0, len(matched))
	for _, e := range matched {
		views = append(views, domain.NewEventView(e, viewerID))
	}
	return views, nil
}

// notifyParticipants resolves participant emails outside the store lock and enqueues one notification
// per recipient. Unknown users are skipped.
func (s *eventService) notifyParticipants(ctx context.Context, kind string, event *domain.Event, changes []string) {
	if len(event.Participants) == 0 {
		return
	}
	notifications := make([]domain.Notification, 0, len(event.Participants))
	for _, userID := range event.Participants {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "skip notification recipient",
				"event_id", event.ID, "user_id", userID, "kind", kind, "err", err)
			continue
		}
		notifications = append(notifications, domain.Notification{
			Kind:       kind,
			Email:      user.Email,
			Name:       user.Name,
			EventID:    event.ID,
			EventTitle: event.Title,
			EventDate:  event.Date,
			EventTime:  event.Time,
			Changes:    changes,
		})
	}
	s.dispatcher.Dispatch(notifications...)
}

// isDomainError reports whether err is one of the sentinels callers map to a client response.
func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrUserNotFound,
		domain.ErrForbidden,
		domain.ErrInvalidInput,
		domain.ErrCapacityTooLow,
		domain.ErrEventFull,
		domain.ErrAlreadyRegistered,
		domain.ErrNotRegistered,
		domain.ErrDuplicateEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
