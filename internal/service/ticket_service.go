package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/events"
	"github.com/AYOPELUMI/support-ticket-system/internal/repository"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

// TicketService coordinates ticket workflows. The acting user is an
// explicit argument on every call; a nil user means unauthenticated.
type TicketService struct {
	tickets    repository.TicketRepository
	guard      *auth.Guard
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Guard      *auth.Guard
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket owned by user.
func (s *TicketService) Create(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := s.guard.CanCreateTicket(user); err != nil {
		s.publishRejection(ctx, "create_ticket")
		return nil, err
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("Invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		UserID:      user.ID,
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventTicketCreated,
		UserID: user.ID,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// List returns the user's tickets, newest first. An absent identity
// yields an empty result, not an error.
func (s *TicketService) List(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	if user == nil {
		return []domain.Ticket{}, nil
	}
	tickets, err := s.tickets.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// Get fetches a single ticket. A missing ticket and another user's
// ticket are both reported as not found so the read path leaks nothing.
func (s *TicketService) Get(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.guard.CanViewTicket(user, ticket); err != nil {
		return nil, apperrors.NewNotFound("Ticket", nil)
	}
	return ticket, nil
}

// Close transitions the ticket to Closed. A missing ticket, an absent
// identity, and a non-owner all produce the identical rejection; none
// of them reveals whether the ticket exists. Closing an already closed
// ticket by its owner is an idempotent success.
func (s *TicketService) Close(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.publishRejection(ctx, "close_ticket")
			return nil, apperrors.NewUnauthorized("You are not authorized to perform this action")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.guard.CanCloseTicket(user, ticket); err != nil {
		s.publishRejection(ctx, "close_ticket")
		return nil, err
	}
	if ticket.IsClosed() {
		return ticket, nil
	}

	now := time.Now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventTicketClosed,
		UserID: user.ID,
		Payload: events.TicketClosedPayload{
			TicketID:  ticket.ID,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

func (s *TicketService) publishRejection(ctx context.Context, action string) {
	s.publishEvent(ctx, events.Event{
		Type:    events.EventAuthRejected,
		Payload: events.AuthRejectedPayload{Action: action, Reason: "ownership check failed"},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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
