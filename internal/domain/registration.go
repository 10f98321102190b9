package domain

import "context"

// RegistrationIndex keeps the user -> events mapping consistent with event participant sets.
type RegistrationIndex interface {
	// Register adds userID to the event's participants and the event to the user's set atomically.
	// It fails with ErrNotFound, ErrAlreadyRegistered or ErrEventFull without mutating anything.
	Register(ctx context.Context, eventID, userID string) (*Event, error)
	// Unregister removes a single registration from both sides.
	Unregister(ctx context.Context, eventID, userID string) (*Event, error)
	// UnregisterAll drops eventID from every given user's set. Missing entries are ignored.
	UnregisterAll(ctx context.Context, eventID string, userIDs []string) error
	ListForUser(ctx context.Context, userID string) ([]string, error)
}

// RegistrationResult is returned after a registration change.
// swagger:model RegistrationResult
type RegistrationResult struct {
	EventID        string `json:"event_id"`
	SpotsRemaining int    `json:"spots_remaining"`
}

// AttendeeService defines attendee-facing operations such as event registration.
type AttendeeService interface {
	RegisterForEvent(ctx context.Context, eventID, userID string) (*RegistrationResult, error)
	UnregisterFromEvent(ctx context.Context, eventID, userID string) (*RegistrationResult, error)
}
