package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
	"github.com/AYOPELUMI/support-ticket-system/internal/service"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

// memTicketRepo is an in-memory TicketRepository backing service tests.
type memTicketRepo struct {
	mu      sync.Mutex
	tickets []*domain.Ticket
	seq     int
}

func (m *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", m.seq)
	ticket.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	m.tickets = append(m.tickets, &copied)
	return nil
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tickets {
		if existing.ID == ticket.ID {
			copied := *ticket
			copied.UpdatedAt = time.Now()
			m.tickets[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ticket := range m.tickets {
		if ticket.ID == id {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTicketRepo) ListByOwner(_ context.Context, userID string) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Ticket
	// Newest first, mirroring the created_at DESC ordering.
	for i := len(m.tickets) - 1; i >= 0; i-- {
		if m.tickets[i].UserID == userID {
			result = append(result, *m.tickets[i])
		}
	}
	return result, nil
}

func (m *memTicketRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

var _ repository.TicketRepository = (*memTicketRepo)(nil)

func newTicketService(tickets repository.TicketRepository) *service.TicketService {
	return service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		Guard:      auth.NewGuard(),
	})
}

func TestTicketService_Create(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	ticket, err := svc.Create(ctx, user, service.TicketCreateInput{
		Subject:     "Printer on fire",
		Description: "It is very much on fire.",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "u1", ticket.UserID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.ClosedAt)
}

func TestTicketService_CreateUnauthenticated(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)

	ticket, err := svc.Create(context.Background(), nil, service.TicketCreateInput{
		Subject:     "Anonymous ticket",
		Description: "Should be rejected",
		Priority:    domain.TicketPriorityLow,
	})
	require.Error(t, err)
	assert.Nil(t, ticket)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// Nothing was persisted.
	assert.Equal(t, 0, repo.count())
}

func TestTicketService_CreateInvalidPriority(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), &domain.User{ID: "u1"}, service.TicketCreateInput{
		Subject:     "Subject",
		Description: "Description",
		Priority:    "CATASTROPHIC",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Equal(t, 0, repo.count())
}

func TestTicketService_List(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)
	ctx := context.Background()
	owner := &domain.User{ID: "u1"}
	other := &domain.User{ID: "u2"}

	first, err := svc.Create(ctx, owner, service.TicketCreateInput{Subject: "first", Description: "d", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, service.TicketCreateInput{Subject: "second", Description: "d", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, service.TicketCreateInput{Subject: "theirs", Description: "d", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)

	t.Run("owner sees own tickets newest first", func(t *testing.T) {
		tickets, err := svc.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, tickets, 2)
		assert.Equal(t, second.ID, tickets[0].ID)
		assert.Equal(t, first.ID, tickets[1].ID)
	})

	t.Run("absent identity yields empty result not error", func(t *testing.T) {
		tickets, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})
}

func TestTicketService_Get(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)
	ctx := context.Background()
	owner := &domain.User{ID: "u1"}

	created, err := svc.Create(ctx, owner, service.TicketCreateInput{Subject: "s", Description: "d", Priority: domain.TicketPriorityMedium})
	require.NoError(t, err)

	t.Run("owner gets ticket", func(t *testing.T) {
		ticket, err := svc.Get(ctx, owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, ticket.ID)
	})

	t.Run("missing and foreign tickets look identical", func(t *testing.T) {
		_, missingErr := svc.Get(ctx, owner, "ticket-999")
		_, foreignErr := svc.Get(ctx, &domain.User{ID: "u2"}, created.ID)
		require.Error(t, missingErr)
		require.Error(t, foreignErr)
		assert.Equal(t, missingErr.Error(), foreignErr.Error())
		assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(foreignErr).Code)
	})
}

func TestTicketService_Close(t *testing.T) {
	repo := &memTicketRepo{}
	svc := newTicketService(repo)
	ctx := context.Background()
	owner := &domain.User{ID: "u1"}
	stranger := &domain.User{ID: "u2"}

	created, err := svc.Create(ctx, owner, service.TicketCreateInput{Subject: "s", Description: "d", Priority: domain.TicketPriorityMedium})
	require.NoError(t, err)

	t.Run("non-owner close rejected and status unchanged", func(t *testing.T) {
		_, err := svc.Close(ctx, stranger, created.ID)
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	})

	t.Run("unauthenticated close rejected with same message", func(t *testing.T) {
		_, anonErr := svc.Close(ctx, nil, created.ID)
		_, strangerErr := svc.Close(ctx, stranger, created.ID)
		_, missingErr := svc.Close(ctx, owner, "ticket-999")
		require.Error(t, anonErr)
		assert.Equal(t, anonErr.Error(), strangerErr.Error())
		assert.Equal(t, anonErr.Error(), missingErr.Error())
	})

	t.Run("owner closes ticket", func(t *testing.T) {
		closed, err := svc.Close(ctx, owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)
	})

	t.Run("owner re-close is idempotent", func(t *testing.T) {
		before, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)

		again, err := svc.Close(ctx, owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, again.Status)
		require.NotNil(t, again.ClosedAt)
		assert.True(t, before.ClosedAt.Equal(*again.ClosedAt))
	})
}
