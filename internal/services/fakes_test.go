package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"virtualevents/internal/domain"
	"virtualevents/internal/repository/memory"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordingDispatcher captures dispatched notifications for assertions.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (d *recordingDispatcher) Dispatch(notifications ...domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notifications...)
}

func (d *recordingDispatcher) all() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Notification, len(d.sent))
	copy(out, d.sent)
	return out
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	hashErr error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

// env wires the services to a fresh in-memory store.
type env struct {
	users      domain.UserRepository
	events     domain.EventRepository
	regs       domain.RegistrationIndex
	dispatcher *recordingDispatcher

	eventSvc    domain.EventService
	attendeeSvc domain.AttendeeService
	userSvc     domain.UserService
	authSvc     domain.AuthService
}

func newEnv() *env {
	store := memory.NewStore()
	e := &env{
		users:      memory.NewUserRepository(store),
		events:     memory.NewEventRepository(store),
		regs:       memory.NewRegistrationIndex(store),
		dispatcher: &recordingDispatcher{},
	}
	e.eventSvc = NewEventService(e.events, e.users, e.dispatcher, discardLogger, 5*time.Second)
	e.attendeeSvc = NewAttendeeService(e.regs, discardLogger)
	e.userSvc = NewUserService(e.users, e.events, e.regs)
	e.authSvc = NewAuthService(e.users, &fakePasswordHasher{}, &fakeTokenIssuer{token: "tok"}, time.Hour, e.dispatcher, discardLogger)
	return e
}

func (e *env) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u := domain.NewUser(email, "hash-password1", "User "+email, "", time.Now())
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) event(t *testing.T, ownerID, date, tm string, capacity int) *domain.Event {
	t.Helper()
	ev := domain.NewEvent("Event "+date+" "+tm, "desc", date, tm, capacity, ownerID, time.Time{})
	require.NoError(t, e.eventSvc.CreateEvent(context.Background(), ev))
	return ev
}

func ptr[T any](v T) *T { return &v }
