package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
)

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSessionCookies_Set(t *testing.T) {
	cookies := auth.NewSessionCookies("auth-token", time.Hour, true)

	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		cookies.Set(c, "signed-token")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)

	cookie := sessionCookie(t, resp, "auth-token")
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
}

func TestSessionCookies_Clear(t *testing.T) {
	cookies := auth.NewSessionCookies("auth-token", time.Hour, true)

	app := fiber.New()
	app.Get("/logout", func(c *fiber.Ctx) error {
		cookies.Clear(c)
		return c.SendStatus(fiber.StatusOK)
	})

	// Clearing with no prior session must still succeed.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp, "auth-token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestSessionCookies_Read(t *testing.T) {
	cookies := auth.NewSessionCookies("auth-token", time.Hour, true)

	app := fiber.New()
	app.Get("/read", func(c *fiber.Ctx) error {
		token, ok := cookies.Read(c)
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(token)
	})

	// Absent cookie is a normal outcome.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/read", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: "signed-token"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
