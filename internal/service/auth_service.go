package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/config"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/events"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

// invalidCredentials is returned for unknown email and wrong password
// alike; the two cases must not be distinguishable by a caller.
const invalidCredentials = "Invalid email or password"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTL()),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new user account and issues a session token for
// it. Email uniqueness is checked up front and again enforced by the
// database constraint, so a concurrent duplicate still surfaces as a
// conflict.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventAuthRejected,
			Payload: events.AuthRejectedPayload{Action: "register", Reason: "duplicate email"},
		})
		return nil, "", apperrors.NewConflict("User already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, "", apperrors.NewConflict("User already exists", nil)
		}
		return nil, "", apperrors.NewInternalError(err)
	}

	token, _, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Email: user.Email, Name: user.Name},
	})
	return user, token, nil
}

// Login authenticates a user by email and password. An unknown email
// and a wrong password produce the identical rejection.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.publishEvent(ctx, events.Event{
				Type:    events.EventAuthRejected,
				Payload: events.AuthRejectedPayload{Action: "login", Reason: "user not found"},
			})
			return nil, "", apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, "", apperrors.NewInternalError(err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventAuthRejected,
			UserID:  user.ID,
			Payload: events.AuthRejectedPayload{Action: "login", Reason: "wrong password"},
		})
		return nil, "", apperrors.NewUnauthorized(invalidCredentials)
	}

	token, _, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserLoggedIn,
		UserID:  user.ID,
		Payload: events.UserLoggedInPayload{Email: user.Email},
	})
	return user, token, nil
}

// Logout records the event. Tokens are stateless so there is nothing to
// revoke server-side; the cookie layer clears the browser's copy.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	s.publishEvent(ctx, events.Event{
		Type:   events.EventUserLoggedOut,
		UserID: userID,
	})
}

// TokenManager exposes the underlying token manager so the HTTP layer
// can build the resolver and match the cookie TTL.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
