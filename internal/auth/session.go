package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookies binds session tokens to the HTTP exchange via a
// hardened cookie. It owns the token's transport lifecycle and nothing
// else: no server-side session state exists.
type SessionCookies struct {
	name   string
	ttl    time.Duration
	secure bool
}

// NewSessionCookies builds the cookie manager. ttl should match the
// token manager's TTL so cookie and token expire together.
func NewSessionCookies(name string, ttl time.Duration, secure bool) *SessionCookies {
	if name == "" {
		name = "auth-token"
	}
	return &SessionCookies{name: name, ttl: ttl, secure: secure}
}

// Set writes the session cookie on the outgoing response.
func (s *SessionCookies) Set(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		Expires:  time.Now().Add(s.ttl),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Clear overwrites the cookie with an immediate expiry. Safe to call
// when no session exists.
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Read returns the raw token from the incoming request. Absence is a
// normal outcome, not an error.
func (s *SessionCookies) Read(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(s.name)
	if token == "" {
		return "", false
	}
	return token, true
}
