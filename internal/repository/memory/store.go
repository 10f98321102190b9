// Package memory implements the repositories on process-local maps guarded by a single lock.
package memory

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"virtualevents/internal/domain"
)

// Store holds every record of the process. It is created once at start-up and shared by the
// repositories built on top of it; its lifetime is the lifetime of the process.
type Store struct {
	mu sync.RWMutex

	usersByEmail map[string]*domain.User
	emailByID    map[string]string

	events map[string]*domain.Event

	// registrations maps a user id to the set of event ids the user is registered for.
	registrations map[string]map[string]struct{}

	entropy io.Reader
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		usersByEmail:  make(map[string]*domain.User),
		emailByID:     make(map[string]string),
		events:        make(map[string]*domain.Event),
		registrations: make(map[string]map[string]struct{}),
		entropy:       ulid.Monotonic(rand.Reader, 0),
		now:           time.Now,
	}
}

// newEventID returns a ULID; ids created later sort after earlier ones. Caller must hold mu.
func (s *Store) newEventID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(s.now()), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// userByID returns the stored user pointer. Caller must hold mu.
func (s *Store) userByID(id string) (*domain.User, bool) {
	email, ok := s.emailByID[id]
	if !ok {
		return nil, false
	}
	u, ok := s.usersByEmail[email]
	return u, ok
}

func (s *Store) addRegistration(userID, eventID string) {
	set, ok := s.registrations[userID]
	if !ok {
		set = make(map[string]struct{})
		s.registrations[userID] = set
	}
	set[eventID] = struct{}{}
}

func (s *Store) removeRegistration(userID, eventID string) {
	set, ok := s.registrations[userID]
	if !ok {
		return
	}
	delete(set, eventID)
	if len(set) == 0 {
		delete(s.registrations, userID)
	}
}

// unregisterAll drops eventID from each user's set, ignoring users without an entry. Caller must hold mu.
func (s *Store) unregisterAll(eventID string, userIDs []string) {
	for _, userID := range userIDs {
		s.removeRegistration(userID, eventID)
	}
}
