package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"virtualevents/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo    domain.UserRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	dispatcher  domain.NotificationDispatcher
	logger      *slog.Logger
}

// NewAuthService creates an AuthService with the given identity store and auth ports.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.InvalidInput("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, domain.InvalidInput("password must be at least %d characters", minPasswordLen)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}
	roleCode := strings.TrimSpace(strings.ToLower(role))
	switch roleCode {
	case "", domain.RoleAttendee, domain.RoleOrganizer:
	default:
		return nil, domain.InvalidInput("role must be %q or %q", domain.RoleOrganizer, domain.RoleAttendee)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(email, hash, name, roleCode, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID, "role", user.Role)

	s.dispatcher.Dispatch(domain.Notification{
		Kind:  domain.NotificationWelcome,
		Email: user.Email,
		Name:  user.Name,
	})
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}
