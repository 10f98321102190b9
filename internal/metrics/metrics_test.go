package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"virtualevents/internal/domain"
)

func TestRegistrationResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "ok"},
		{"full", domain.ErrEventFull, "event_full"},
		{"duplicate", domain.ErrAlreadyRegistered, "already_registered"},
		{"not registered", domain.ErrNotRegistered, "not_registered"},
		{"missing event", domain.ErrNotFound, "not_found"},
		{"wrapped missing user", fmt.Errorf("register: %w", domain.ErrUserNotFound), "not_found"},
		{"unexpected", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registrationResult(tt.err))
		})
	}
}

func TestObserveRegistration(t *testing.T) {
	before := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("register", "event_full"))
	ObserveRegistration("register", domain.ErrEventFull)
	after := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("register", "event_full"))
	assert.Equal(t, before+1, after)
}

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/events/{id}", "404"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/01HZY", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/events/{id}", "404"))
	assert.Equal(t, before+1, after)
}
