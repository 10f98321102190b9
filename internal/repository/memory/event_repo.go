package memory

import (
	"context"
	"fmt"

	"virtualevents/internal/domain"
)

type eventRepository struct {
	store *Store
}

// NewEventRepository returns the event store backed by s.
func NewEventRepository(s *Store) domain.EventRepository {
	return &eventRepository{store: s}
}

// Create stores the event under a fresh id and bumps the owner's organized counter.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.userByID(e.CreatedBy)
	if !ok {
		return fmt.Errorf("event owner %q: %w", e.CreatedBy, domain.ErrUserNotFound)
	}
	id, err := s.newEventID()
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	e.ID = id
	if e.Participants == nil {
		e.Participants = []string{}
	}
	s.events[id] = e.Clone()
	owner.Profile.EventsOrganized++
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fn func(*domain.Event) error) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	// Identity, ownership and participants are not editable through Update.
	next.ID = current.ID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	next.Participants = current.Participants
	if len(next.Participants) > next.Capacity {
		return nil, &domain.CapacityError{Current: len(next.Participants), Requested: next.Capacity}
	}
	s.events[id] = next
	return next.Clone(), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string, guard func(*domain.Event) error) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	removed := current.Clone()
	if guard != nil {
		if err := guard(removed); err != nil {
			return nil, err
		}
	}
	delete(s.events, id)
	s.unregisterAll(id, current.Participants)
	return removed, nil
}
