package domain

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role codes a user can hold.
const (
	RoleOrganizer = "organizer"
	RoleAttendee  = "attendee"
)

// Profile holds the user-editable profile and activity counters.
// swagger:model Profile
type Profile struct {
	Bio             string    `json:"bio"`
	Interests       []string  `json:"interests"`
	EventsOrganized int       `json:"events_organized"`
	EventsAttended  int       `json:"events_attended"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Profile      Profile `json:"profile"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
// An empty role defaults to attendee.
func NewUser(email, passwordHash, name, role string, now time.Time) *User {
	if role == "" {
		role = RoleAttendee
	}
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		Profile: Profile{
			Interests: []string{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Profile.Interests = slices.Clone(u.Profile.Interests)
	if c.Profile.Interests == nil {
		c.Profile.Interests = []string{}
	}
	return &c
}

// ProfilePatch is a presence-aware profile update: nil fields are left unchanged.
type ProfilePatch struct {
	Name      *string
	Bio       *string
	Interests *[]string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository is the identity store.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Update applies fn to the stored user under the store lock and returns the result.
	Update(ctx context.Context, id string, fn func(*User) error) (*User, error)
}

// AuthService handles sign-up and password login.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, role string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// UserService defines profile operations for the authenticated user.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error)
	ListRegisteredEvents(ctx context.Context, userID string) ([]*EventView, error)
}
