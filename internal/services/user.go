package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtualevents/internal/domain"
)

type userService struct {
	userRepo      domain.UserRepository
	eventRepo     domain.EventRepository
	registrations domain.RegistrationIndex
}

// NewUserService creates a UserService for profile reads and updates.
func NewUserService(userRepo domain.UserRepository, eventRepo domain.EventRepository, registrations domain.RegistrationIndex) domain.UserService {
	return &userService{
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		registrations: registrations,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.InvalidInput("name cannot be empty")
		}
		patch.Name = &name
	}
	var interests []string
	if patch.Interests != nil {
		interests = make([]string, 0, len(*patch.Interests))
		for _, in := range *patch.Interests {
			if in = strings.TrimSpace(in); in != "" {
				interests = append(interests, in)
			}
		}
	}

	user, err := s.userRepo.Update(ctx, id, func(u *domain.User) error {
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Bio != nil {
			u.Profile.Bio = *patch.Bio
		}
		if patch.Interests != nil {
			u.Profile.Interests = interests
		}
		u.Profile.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ListRegisteredEvents returns the events userID is registered for, in listing order.
func (s *userService) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.EventView, error) {
	ids, err := s.registrations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	events := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			// The event was deleted between the two reads.
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get event for registration: %w", err)
		}
		events = append(events, e)
	}
	domain.SortEvents(events)

	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, domain.NewEventView(e, userID))
	}
	return views, nil
}
