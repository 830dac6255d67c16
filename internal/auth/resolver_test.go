package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
)

// memUserRepo is an in-memory UserRepository for resolver tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type resolverFixture struct {
	app    *fiber.App
	tokens *auth.TokenManager
	users  *memUserRepo
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	cookies := auth.NewSessionCookies("auth-token", time.Hour, false)
	tokens := auth.NewTokenManager("resolver-secret", time.Hour)
	users := newMemUserRepo()
	resolver := auth.NewResolver(cookies, tokens, users, zap.NewNop())

	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		user, ok := resolver.Resolve(c)
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(user.ID)
	})

	return &resolverFixture{app: app, tokens: tokens, users: users}
}

func (f *resolverFixture) whoami(t *testing.T, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestResolver_Resolve(t *testing.T) {
	fixture := newResolverFixture(t)
	fixture.users.users["u1"] = &domain.User{ID: "u1", Email: "a@x.com"}

	token, _, err := fixture.tokens.Issue("u1")
	require.NoError(t, err)

	t.Run("valid session resolves user", func(t *testing.T) {
		resp := fixture.whoami(t, token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("repeated resolution is consistent", func(t *testing.T) {
		first := fixture.whoami(t, token)
		second := fixture.whoami(t, token)
		assert.Equal(t, first.StatusCode, second.StatusCode)
	})

	t.Run("missing cookie is absent", func(t *testing.T) {
		resp := fixture.whoami(t, "")
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("tampered token is absent", func(t *testing.T) {
		resp := fixture.whoami(t, token+"x")
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("token signed elsewhere is absent", func(t *testing.T) {
		foreign := auth.NewTokenManager("other-secret", time.Hour)
		forged, _, err := foreign.Issue("u1")
		require.NoError(t, err)
		resp := fixture.whoami(t, forged)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("deleted account is absent not stale", func(t *testing.T) {
		fixture.users.users["gone"] = &domain.User{ID: "gone"}
		ghostToken, _, err := fixture.tokens.Issue("gone")
		require.NoError(t, err)
		fixture.users.delete("gone")

		resp := fixture.whoami(t, ghostToken)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})
}
