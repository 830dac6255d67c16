package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
)

// Resolver derives the authenticated user for a request from the
// session cookie. Every failure mode, missing cookie, bad token, or a
// user that no longer exists, resolves to absent; the caller never
// learns which one happened.
type Resolver struct {
	cookies *SessionCookies
	tokens  *TokenManager
	users   repository.UserRepository
	logger  *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(cookies *SessionCookies, tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *Resolver {
	return &Resolver{cookies: cookies, tokens: tokens, users: users, logger: logger}
}

// Resolve returns the current user, or (nil, false) when no valid
// session exists. It has no observable side effects and may be called
// repeatedly within a request with consistent results.
func (r *Resolver) Resolve(c *fiber.Ctx) (*domain.User, bool) {
	token, ok := r.cookies.Read(c)
	if !ok {
		return nil, false
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Warn("session token rejected", zap.Error(err))
		return nil, false
	}

	user, err := r.users.GetByID(c.Context(), claims.UserID())
	if err != nil {
		if err == pgx.ErrNoRows {
			// Valid token for a deleted account: stale identity, treat as absent.
			r.logger.Warn("session user no longer exists", zap.String("user_id", claims.UserID()))
		} else {
			r.logger.Error("session user lookup failed", zap.Error(err))
		}
		return nil, false
	}
	return user, true
}
