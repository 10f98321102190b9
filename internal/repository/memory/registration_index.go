package memory

import (
	"context"
	"fmt"
	"slices"

	"virtualevents/internal/domain"
)

type registrationIndex struct {
	store *Store
}

// NewRegistrationIndex returns the registration index backed by s.
func NewRegistrationIndex(s *Store) domain.RegistrationIndex {
	return &registrationIndex{store: s}
}

// Register performs the duplicate and capacity checks and both mutations in one critical section,
// so concurrent callers can never push an event over capacity.
func (r *registrationIndex) Register(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user, ok := s.userByID(userID)
	if !ok {
		return nil, fmt.Errorf("register user %q: %w", userID, domain.ErrUserNotFound)
	}
	if e.HasParticipant(userID) {
		return nil, domain.ErrAlreadyRegistered
	}
	if e.IsFull() {
		return nil, domain.ErrEventFull
	}

	e.Participants = append(e.Participants, userID)
	s.addRegistration(userID, eventID)
	user.Profile.EventsAttended++
	return e.Clone(), nil
}

func (r *registrationIndex) Unregister(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	i := slices.Index(e.Participants, userID)
	if i < 0 {
		return nil, domain.ErrNotRegistered
	}
	e.Participants = slices.Delete(e.Participants, i, i+1)
	s.removeRegistration(userID, eventID)
	return e.Clone(), nil
}

func (r *registrationIndex) UnregisterAll(ctx context.Context, eventID string, userIDs []string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unregisterAll(eventID, userIDs)
	return nil
}

func (r *registrationIndex) ListForUser(ctx context.Context, userID string) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.registrations[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
