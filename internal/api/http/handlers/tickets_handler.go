package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AYOPELUMI/support-ticket-system/internal/api/dto"
	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	"github.com/AYOPELUMI/support-ticket-system/internal/service"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

// TicketsHandler manages ticket endpoints. Identity is resolved per
// request from the session cookie and handed to the service as an
// explicit argument; the service decides what an absent identity means.
type TicketsHandler struct {
	service  *service.TicketService
	resolver *auth.Resolver
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService, resolver *auth.Resolver) *TicketsHandler {
	return &TicketsHandler{service: ticketService, resolver: resolver}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, _ := h.resolver.Resolve(c)

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}
	if req.Subject == "" || req.Description == "" || req.Priority == "" {
		return apperrors.NewValidationError("All fields are required", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), user, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("Ticket created successfully", ticketResponse(ticket)))
}

// ListTickets GET /tickets. Unauthenticated callers get an empty list.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, _ := h.resolver.Resolve(c)
	tickets, err := h.service.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(dto.OK("Tickets retrieved", items))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, _ := h.resolver.Resolve(c)
	ticket, err := h.service.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Ticket retrieved", ticketResponse(ticket)))
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	user, _ := h.resolver.Resolve(c)
	ticket, err := h.service.Close(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Ticket closed successfully", ticketResponse(ticket)))
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		ClosedAt:    ticket.ClosedAt,
	}
}
