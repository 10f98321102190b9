package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"virtualevents/internal/domain"
)

type userRepository struct {
	store *Store
}

// NewUserRepository returns the identity store backed by s.
func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return fmt.Errorf("create user %q: %w", u.Email, domain.ErrDuplicateEmail)
	}
	u.ID = uuid.NewString()
	stored := u.Clone()
	s.usersByEmail[u.Email] = stored
	s.emailByID[u.ID] = u.Email
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userByID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepository) Update(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.userByID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	// id and email are keys of the indexes and stay fixed.
	next.ID = current.ID
	next.Email = current.Email
	s.usersByEmail[current.Email] = next
	return next.Clone(), nil
}
