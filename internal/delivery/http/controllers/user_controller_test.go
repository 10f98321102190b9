package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user      *domain.User
	err       error
	views     []*domain.EventView
	lastPatch domain.ProfilePatch
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	u := f.user.Clone()
	if patch.Bio != nil {
		u.Profile.Bio = *patch.Bio
	}
	return u, nil
}

func (f *fakeUserService) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.EventView, error) {
	return f.views, f.err
}

func newTestUser() *domain.User {
	u := domain.NewUser("alice@example.com", "secret-hash", "Alice", "", time.Now())
	u.ID = "user-1"
	return u
}

func TestUserController_GetProfile(t *testing.T) {
	c := NewUserController(testLogger, &fakeUserService{user: newTestUser()})
	rr, env := serve(t, http.MethodGet, "/user/profile", "/user/profile", "", "user-1", c.GetProfile)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, string(env.Data), "secret-hash")

	c = NewUserController(testLogger, &fakeUserService{err: domain.ErrUserNotFound})
	rr, env = serve(t, http.MethodGet, "/user/profile", "/user/profile", "", "user-1", c.GetProfile)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotFound, env.Error.Code)

	rr, _ = serve(t, http.MethodGet, "/user/profile", "/user/profile", "", "", c.GetProfile)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserController_UpdateProfile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bio only", `{"bio":"Gopher"}`, http.StatusOK, ""},
		{"too many interests", `{"interests":["a","b","c","d","e","f","g","h","i","j","k","l","m","n","o","p","q","r","s","t","u"]}`, http.StatusBadRequest, helpers.ErrCodeValidation},
		{"unknown field", `{"email":"new@example.com"}`, http.StatusBadRequest, helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{user: newTestUser()}
			c := NewUserController(testLogger, fake)
			rr, env := serve(t, http.MethodPut, "/user/profile", "/user/profile", tt.body, "user-1", c.UpdateProfile)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			assert.Nil(t, fake.lastPatch.Name)
			assert.Nil(t, fake.lastPatch.Interests)
			var u domain.User
			require.NoError(t, json.Unmarshal(env.Data, &u))
			assert.Equal(t, "Gopher", u.Profile.Bio)
		})
	}
}

func TestUserController_ListMyEvents(t *testing.T) {
	e := domain.NewEvent("Go night", "", "2026-11-01", "18:00", 2, "owner", time.Now())
	e.ID = "ev-1"
	e.Participants = []string{"user-1"}
	c := NewUserController(testLogger, &fakeUserService{views: []*domain.EventView{domain.NewEventView(e, "user-1")}})

	rr, env := serve(t, http.MethodGet, "/user/events", "/user/events", "", "user-1", c.ListMyEvents)
	require.Equal(t, http.StatusOK, rr.Code)
	var views []domain.EventView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.True(t, views[0].IsUserRegistered)
	assert.Equal(t, domain.StatusRegistered, views[0].RegistrationStatus)
}
