package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"virtualevents/internal/adapters/auth"
	"virtualevents/internal/delivery/http/controllers"
	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
	"virtualevents/internal/repository/memory"
	"virtualevents/internal/services"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (d *recordingDispatcher) Dispatch(notifications ...domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notifications...)
}

func (d *recordingDispatcher) kinds(kind string) []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.Notification
	for _, n := range d.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type testServer struct {
	t          *testing.T
	handler    http.Handler
	dispatcher *recordingDispatcher
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	events := memory.NewEventRepository(store)
	regs := memory.NewRegistrationIndex(store)
	dispatcher := &recordingDispatcher{}

	const secret = "router-test-secret"
	authSvc := services.NewAuthService(users, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewJWTIssuer(secret), time.Hour, dispatcher, logger)
	handler := NewRouter(RouterConfig{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(secret),
		AuthLimiter:    middleware.NewRateLimiter(1000, 1000),
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
		Auth:           controllers.NewAuthController(logger, authSvc),
		Events:         controllers.NewEventController(logger, services.NewEventService(events, users, dispatcher, logger, 5*time.Second)),
		Attendee:       controllers.NewAttendeeController(logger, services.NewAttendeeService(regs, logger)),
		Users:          controllers.NewUserController(logger, services.NewUserService(users, events, regs)),
	})
	return &testServer{t: t, handler: handler, dispatcher: dispatcher}
}

func (s *testServer) do(method, path, token, body string) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

// signUp registers and logs in a user, returning its bearer token.
func (s *testServer) signUp(email, role string) string {
	s.t.Helper()
	body := `{"email":"` + email + `","password":"password1","name":"` + email + `","role":"` + role + `"}`
	status, _ := s.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(s.t, http.StatusCreated, status)

	status, env := s.do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"password1"}`)
	require.Equal(s.t, http.StatusOK, status)
	var login controllers.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &login))
	return login.Token
}

func (s *testServer) createEvent(token string, capacity int) string {
	s.t.Helper()
	body := `{"title":"Go meetup","description":"talks","date":"2026-12-01","time":"18:30","capacity":` + itoa(capacity) + `}`
	status, env := s.do(http.MethodPost, "/events", token, body)
	require.Equal(s.t, http.StatusCreated, status, string(env.Data))
	var view domain.EventView
	require.NoError(s.t, json.Unmarshal(env.Data, &view))
	return view.ID
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "virtualevents_http_requests_total")
}

func TestRouter_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/events", "/user/profile", "/user/events"} {
		status, env := s.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, helpers.ErrCodeUnauthorized, env.Error.Code)
	}
	status, _ := s.do(http.MethodGet, "/events", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, helpers.ErrCodeNotFound, env.Error.Code)
}

func TestRouter_CapacityTwoThirdAttendeeRejected(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@example.com", "organizer")
	a := s.signUp("a@example.com", "")
	b := s.signUp("b@example.com", "")
	c := s.signUp("c@example.com", "")
	id := s.createEvent(owner, 2)

	status, env := s.do(http.MethodPost, "/events/"+id+"/register", a, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"event_id":"`+id+`","spots_remaining":1}`, string(env.Data))

	status, env = s.do(http.MethodPost, "/events/"+id+"/register", b, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"event_id":"`+id+`","spots_remaining":0}`, string(env.Data))

	status, env = s.do(http.MethodPost, "/events/"+id+"/register", c, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, helpers.ErrCodeEventFull, env.Error.Code)

	status, env = s.do(http.MethodPost, "/events/"+id+"/register", a, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, helpers.ErrCodeAlreadyRegistered, env.Error.Code)

	status, env = s.do(http.MethodGet, "/events/"+id, c, "")
	require.Equal(t, http.StatusOK, status)
	var view domain.EventView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.StatusFull, view.RegistrationStatus)
	assert.Equal(t, 2, view.ParticipantCount)
	assert.Empty(t, view.Participants)
	assert.NotContains(t, string(env.Data), `"participants"`)

	status, env = s.do(http.MethodGet, "/events/"+id, owner, "")
	require.Equal(t, http.StatusOK, status)
	view = domain.EventView{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Participants, 2)

	status, env = s.do(http.MethodGet, "/user/events", a, "")
	require.Equal(t, http.StatusOK, status)
	var mine []domain.EventView
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, domain.StatusRegistered, mine[0].RegistrationStatus)
}

func TestRouter_ListEventsTextFilter(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@example.com", "organizer")
	id := s.createEvent(owner, 5)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"", []string{id}},
		{"?query=nomatch", []string{}},
		{"?query=MEETUP", []string{id}},
		{"?query=talks", []string{id}},
		{"?q=nomatch", []string{}},
		{"?query=meetup&q=nomatch", []string{id}},
		{"?date=2026-12-02", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, env := s.do(http.MethodGet, "/events"+tt.query, owner, "")
			require.Equal(t, http.StatusOK, status)
			var resp controllers.ListEventsResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			ids := []string{}
			for _, ev := range resp.Events {
				ids = append(ids, ev.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), resp.Pagination.Total)
		})
	}
}

func TestRouter_CapacityBelowParticipantsRejected(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@example.com", "organizer")
	a := s.signUp("a@example.com", "")
	id := s.createEvent(owner, 5)
	status, _ := s.do(http.MethodPost, "/events/"+id+"/register", a, "")
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(http.MethodPut, "/events/"+id, owner, `{"capacity":0}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, helpers.ErrCodeCapacityTooLow, env.Error.Code)
	assert.EqualValues(t, 1, env.Error.Details["current_participants"])

	status, env = s.do(http.MethodGet, "/events/"+id, owner, "")
	require.Equal(t, http.StatusOK, status)
	var view domain.EventView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 5, view.Capacity)
	assert.Nil(t, view.UpdatedAt)

	status, env = s.do(http.MethodPut, "/events/"+id, a, `{"title":"hijack"}`)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, helpers.ErrCodeForbidden, env.Error.Code)
}

func TestRouter_RescheduleNotifiesParticipants(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@example.com", "organizer")
	a := s.signUp("a@example.com", "")
	id := s.createEvent(owner, 5)
	status, _ := s.do(http.MethodPost, "/events/"+id+"/register", a, "")
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(http.MethodPut, "/events/"+id, owner, `{"time":"19:00","description":"talks"}`)
	require.Equal(t, http.StatusOK, status)
	var resp controllers.UpdateEventResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, []string{"time"}, resp.UpdatedFields)

	updated := s.dispatcher.kinds(domain.NotificationEventUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, "a@example.com", updated[0].Email)
}

func TestRouter_DeleteWithThreeParticipants(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@example.com", "organizer")
	id := s.createEvent(owner, 3)
	tokens := []string{
		s.signUp("a@example.com", ""),
		s.signUp("b@example.com", ""),
		s.signUp("c@example.com", ""),
	}
	for _, tok := range tokens {
		status, _ := s.do(http.MethodPost, "/events/"+id+"/register", tok, "")
		require.Equal(t, http.StatusOK, status)
	}

	status, env := s.do(http.MethodDelete, "/events/"+id, tokens[0], "")
	require.Equal(t, http.StatusForbidden, status)

	status, env = s.do(http.MethodDelete, "/events/"+id, owner, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"participants_notified":3}`, string(env.Data))
	assert.Len(t, s.dispatcher.kinds(domain.NotificationEventCancelled), 3)

	status, _ = s.do(http.MethodGet, "/events/"+id, owner, "")
	assert.Equal(t, http.StatusNotFound, status)
	for _, tok := range tokens {
		status, env = s.do(http.MethodGet, "/user/events", tok, "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(env.Data))
	}
}

func TestRouter_AuthRateLimited(t *testing.T) {
	s := newTestServer(t)
	limited := NewRouter(RouterConfig{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthLimiter: middleware.NewRateLimiter(0.001, 1),
		Auth:        controllers.NewAuthController(slog.New(slog.NewTextHandler(io.Discard, nil)), stubAuth{}),
	})
	s.handler = limited

	status, _ := s.do(http.MethodPost, "/auth/login", "", `{"email":"x@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, env := s.do(http.MethodPost, "/auth/login", "", `{"email":"x@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, helpers.ErrCodeTooManyRequests, env.Error.Code)
}

type stubAuth struct{}

func (stubAuth) SignUp(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	return nil, domain.ErrDuplicateEmail
}

func (stubAuth) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}
