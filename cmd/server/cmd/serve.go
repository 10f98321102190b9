package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"virtualevents/config"
	_ "virtualevents/docs"
	"virtualevents/internal/adapters/auth"
	"virtualevents/internal/adapters/email"
	deliveryhttp "virtualevents/internal/delivery/http"
	"virtualevents/internal/delivery/http/controllers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/metrics"
	"virtualevents/internal/repository/memory"
	"virtualevents/internal/services"
)

const shutdownTimeout = 10 * time.Second

var serverPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and the notification workers.

Configuration is read from environment variables (and .env outside production).
The server shuts down gracefully on SIGINT/SIGTERM, draining queued notifications.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if serverPort != "" {
			cfg.Port = serverPort
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, cfg, config.NewLogger(cfg))
	},
}

func init() {
	addServeFlags(serveCmd)
}

// addServeFlags registers the serve flags on cmd. The root command gets them too because it runs
// serve when no subcommand is given.
func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverPort, "port", "", "server port (overrides PORT)")
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics.Init()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
		Resend: email.ResendConfig{APIKey: cfg.Email.ResendAPIKey},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	dispatcher := services.NewDispatcher(
		services.NewEmailService(mailer, email.NewTemplateRenderer(), logger),
		logger,
		services.DispatcherConfig{
			Workers:     cfg.Notify.Workers,
			QueueSize:   cfg.Notify.QueueSize,
			SendTimeout: cfg.Notify.SendTimeout,
		},
	)

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	eventRepo := memory.NewEventRepository(store)
	registrations := memory.NewRegistrationIndex(store)

	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, dispatcher, logger)
	eventService := services.NewEventService(eventRepo, userRepo, dispatcher, logger, cfg.RequestTimeout)
	attendeeService := services.NewAttendeeService(registrations, logger)
	userService := services.NewUserService(userRepo, eventRepo, registrations)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
			Logger:         logger,
			Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
			AuthLimiter:    limiter,
			AllowedOrigins: cfg.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
			Auth:           controllers.NewAuthController(logger, authService),
			Events:         controllers.NewEventController(logger, eventService),
			Attendee:       controllers.NewAttendeeController(logger, attendeeService),
			Users:          controllers.NewUserController(logger, userService),
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Workers outlive ctx so queued notifications drain after the signal.
	workers, workersCtx := errgroup.WithContext(context.Background())
	workers.Go(func() error { return dispatcher.Run(workersCtx) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("listening", "addr", server.Addr, "env", cfg.Environment, "email_provider", cfg.Email.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
		return nil
	})
	serveErr := g.Wait()

	dispatcher.Close()
	drained := make(chan error, 1)
	go func() { drained <- workers.Wait() }()
	select {
	case err := <-drained:
		if err != nil {
			logger.Error("notification workers stopped with error", "err", err)
		}
	case <-time.After(shutdownTimeout):
		logger.Warn("notification queue not drained before shutdown timeout")
	}
	return serveErr
}
