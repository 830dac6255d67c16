package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AYOPELUMI/support-ticket-system/internal/auth"
	"github.com/AYOPELUMI/support-ticket-system/internal/domain"
	apperrors "github.com/AYOPELUMI/support-ticket-system/pkg/util"
)

func TestGuard_CanCreateTicket(t *testing.T) {
	guard := auth.NewGuard()

	assert.NoError(t, guard.CanCreateTicket(&domain.User{ID: "u1"}))

	err := guard.CanCreateTicket(nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestGuard_OwnershipChecks(t *testing.T) {
	guard := auth.NewGuard()
	owner := &domain.User{ID: "u1"}
	stranger := &domain.User{ID: "u2"}
	ticket := &domain.Ticket{ID: "t1", UserID: "u1"}

	tests := []struct {
		name    string
		user    *domain.User
		ticket  *domain.Ticket
		allowed bool
	}{
		{name: "owner allowed", user: owner, ticket: ticket, allowed: true},
		{name: "different user rejected", user: stranger, ticket: ticket, allowed: false},
		{name: "nil user rejected", user: nil, ticket: ticket, allowed: false},
		{name: "nil ticket rejected", user: owner, ticket: nil, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closeErr := guard.CanCloseTicket(tt.user, tt.ticket)
			viewErr := guard.CanViewTicket(tt.user, tt.ticket)
			if tt.allowed {
				assert.NoError(t, closeErr)
				assert.NoError(t, viewErr)
				return
			}
			require.Error(t, closeErr)
			require.Error(t, viewErr)
			// Every failing clause yields the identical rejection.
			assert.Equal(t, closeErr.Error(), viewErr.Error())
			assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(closeErr).Code)
		})
	}
}

func TestGuard_RejectionsAreIndistinguishable(t *testing.T) {
	guard := auth.NewGuard()
	ticket := &domain.Ticket{ID: "t1", UserID: "u1"}

	missingIdentity := guard.CanCloseTicket(nil, ticket)
	wrongOwner := guard.CanCloseTicket(&domain.User{ID: "u2"}, ticket)
	missingTicket := guard.CanCloseTicket(&domain.User{ID: "u2"}, nil)

	require.Error(t, missingIdentity)
	assert.Equal(t, missingIdentity.Error(), wrongOwner.Error())
	assert.Equal(t, missingIdentity.Error(), missingTicket.Error())
}
