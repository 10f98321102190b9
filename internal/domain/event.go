package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Layouts for the calendar date and local time of an event.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Registration status values reported to a viewer.
const (
	StatusRegistered = "registered"
	StatusFull       = "full"
	StatusOpen       = "open"
)

// Event represents a virtual event owned by the user who created it.
// swagger:model Event
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	Capacity     int        `json:"capacity"`
	CreatedBy    string     `json:"created_by"`
	Participants []string   `json:"participants"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// NewEvent returns a new Event owned by createdBy. ID is set by the repository on create.
func NewEvent(title, description, date, tm string, capacity int, createdBy string, createdAt time.Time) *Event {
	return &Event{
		Title:        title,
		Description:  description,
		Date:         date,
		Time:         tm,
		Capacity:     capacity,
		CreatedBy:    createdBy,
		Participants: []string{},
		CreatedAt:    createdAt,
	}
}

// Validate checks required fields and formats.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return InvalidInput("title is required")
	}
	if err := validateDate(e.Date); err != nil {
		return err
	}
	if err := validateTime(e.Time); err != nil {
		return err
	}
	if e.Capacity <= 0 {
		return InvalidInput("capacity must be a positive integer")
	}
	return nil
}

// SpotsRemaining returns the number of free places.
func (e *Event) SpotsRemaining() int {
	if n := e.Capacity - len(e.Participants); n > 0 {
		return n
	}
	return 0
}

// IsFull returns true when no places remain.
func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.Capacity
}

// HasParticipant reports whether userID is registered.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return InvalidInput("date is required")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return InvalidInput("date must use the YYYY-MM-DD format")
	}
	return nil
}

func validateTime(s string) error {
	if strings.TrimSpace(s) == "" {
		return InvalidInput("time is required")
	}
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return InvalidInput("time must use the HH:MM format")
	}
	return nil
}

// EventPatch is a presence-aware partial update. Nil fields are left unchanged; a present empty
// description clears it, while title, date and time cannot be cleared.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Capacity    *int
}

// Apply validates the patch against e and overwrites present fields, returning the names of the fields
// whose value changed. e is left untouched when an error is returned.
func (p EventPatch) Apply(e *Event) ([]string, error) {
	if p.Capacity != nil && *p.Capacity < len(e.Participants) {
		return nil, &CapacityError{Current: len(e.Participants), Requested: *p.Capacity}
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		return nil, InvalidInput("capacity must be a positive integer")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, InvalidInput("title cannot be empty")
	}
	if p.Date != nil {
		if err := validateDate(*p.Date); err != nil {
			return nil, err
		}
	}
	if p.Time != nil {
		if err := validateTime(*p.Time); err != nil {
			return nil, err
		}
	}

	changed := []string{}
	if p.Title != nil && *p.Title != e.Title {
		e.Title = *p.Title
		changed = append(changed, "title")
	}
	if p.Description != nil && *p.Description != e.Description {
		e.Description = *p.Description
		changed = append(changed, "description")
	}
	if p.Date != nil && *p.Date != e.Date {
		e.Date = *p.Date
		changed = append(changed, "date")
	}
	if p.Time != nil && *p.Time != e.Time {
		e.Time = *p.Time
		changed = append(changed, "time")
	}
	if p.Capacity != nil && *p.Capacity != e.Capacity {
		e.Capacity = *p.Capacity
		changed = append(changed, "capacity")
	}
	return changed, nil
}

// ScheduleChanged reports whether the changed fields include the date or time.
func ScheduleChanged(changed []string) bool {
	return slices.Contains(changed, "date") || slices.Contains(changed, "time")
}

// EventFilter narrows ListEvents. Empty fields match everything.
type EventFilter struct {
	Date  string
	Query string
}

// Matches reports whether e satisfies the filter. Query is a case-insensitive substring match on the
// title or description.
func (f EventFilter) Matches(e *Event) bool {
	if f.Date != "" && e.Date != f.Date {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Description), q)
	}
	return true
}

// EventView is an event annotated with fields relative to the viewing user. The participant ids are
// serialized for the owner only; everyone else sees the count.
// swagger:model EventView
type EventView struct {
	Event
	Participants       []string `json:"participants,omitempty"`
	ParticipantCount   int      `json:"participant_count"`
	SpotsRemaining     int      `json:"spots_remaining"`
	IsFull             bool     `json:"is_full"`
	IsUserRegistered   bool     `json:"is_user_registered"`
	RegistrationStatus string   `json:"registration_status"`
}

// NewEventView builds the viewer-relative projection of e. Registered takes priority over full.
func NewEventView(e *Event, viewerID string) *EventView {
	v := &EventView{
		Event:            *e.Clone(),
		ParticipantCount: len(e.Participants),
		SpotsRemaining:   e.SpotsRemaining(),
		IsFull:           e.IsFull(),
		IsUserRegistered: viewerID != "" && e.HasParticipant(viewerID),
	}
	if viewerID != "" && viewerID == e.CreatedBy {
		v.Participants = slices.Clone(e.Participants)
	}
	switch {
	case v.IsUserRegistered:
		v.RegistrationStatus = StatusRegistered
	case v.IsFull:
		v.RegistrationStatus = StatusFull
	default:
		v.RegistrationStatus = StatusOpen
	}
	return v
}

// SortEvents orders events by date ascending, then time, then id.
func SortEvents(events []*Event) {
	slices.SortStableFunc(events, func(a, b *Event) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := strings.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// EventRepository is the event store.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	// Update runs fn on a copy of the stored event under the store lock and commits it only when fn
	// returns nil.
	Update(ctx context.Context, id string, fn func(*Event) error) (*Event, error)
	// Delete removes the event after guard accepts it and clears every participant's registration
	// index entry in the same critical section. It returns the removed event.
	Delete(ctx context.Context, id string, guard func(*Event) error) (*Event, error)
}

// EventService is the event lifecycle service.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, viewerID string) (*EventView, error)
	UpdateEvent(ctx context.Context, eventID, requesterID string, patch EventPatch) (*Event, []string, error)
	DeleteEvent(ctx context.Context, eventID, requesterID string) (participantsNotified int, err error)
	ListEvents(ctx context.Context, viewerID string, filter EventFilter) ([]*EventView, error)
}
