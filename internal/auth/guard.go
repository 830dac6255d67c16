package auth

import (
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

const unauthorizedMessage = "You are not authorized to perform this action"

// Guard gates ticket mutations behind ownership checks. The acting
// identity is always an explicit argument; the guard reads no ambient
// request state. Every failing clause returns the same rejection so a
// caller cannot probe which tickets exist.
type Guard struct{}

// NewGuard constructs the authorization guard.
func NewGuard() *Guard {
	return &Guard{}
}

// CanCreateTicket requires a resolved identity. Anonymous ticket
// creation is the deprecated mode and is rejected.
func (g *Guard) CanCreateTicket(user *domain.User) error {
	if user == nil {
		return apperrors.NewUnauthorized(unauthorizedMessage)
	}
	return nil
}

// CanViewTicket permits access only to the ticket's owner.
func (g *Guard) CanViewTicket(user *domain.User, ticket *domain.Ticket) error {
	return g.requireOwner(user, ticket)
}

// CanCloseTicket permits the close transition only to the ticket's
// owner.
func (g *Guard) CanCloseTicket(user *domain.User, ticket *domain.Ticket) error {
	return g.requireOwner(user, ticket)
}

func (g *Guard) requireOwner(user *domain.User, ticket *domain.Ticket) error {
	if user == nil || ticket == nil || ticket.UserID != user.ID {
		return apperrors.NewUnauthorized(unauthorizedMessage)
	}
	return nil
}
