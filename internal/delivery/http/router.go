package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"virtualevents/internal/delivery/http/controllers"
	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
	"virtualevents/internal/metrics"
)

// RouterConfig carries the controllers and cross-cutting pieces the router wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	RequestTimeout time.Duration

	Auth     *controllers.AuthController
	Events   *controllers.EventController
	Attendee *controllers.AttendeeController
	Users    *controllers.UserController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// Operational
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}

		// Auth
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Handler)
			}
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
		})

		// Authenticated API
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Verifier, cfg.Logger))

			r.Post("/events", cfg.Events.CreateEvent)
			r.Get("/events", cfg.Events.ListEvents)
			r.Get("/events/{id}", cfg.Events.GetEvent)
			r.Put("/events/{id}", cfg.Events.UpdateEvent)
			r.Delete("/events/{id}", cfg.Events.DeleteEvent)
			r.Post("/events/{id}/register", cfg.Attendee.RegisterForEvent)
			r.Delete("/events/{id}/register", cfg.Attendee.UnregisterFromEvent)

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", cfg.Users.GetProfile)
				r.Put("/profile", cfg.Users.UpdateProfile)
				r.Get("/events", cfg.Users.ListMyEvents)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusMethodNotAllowed, helpers.ErrCodeBadRequest, "method not allowed")
	})

	return r
}
