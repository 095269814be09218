package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTicketName(t *testing.T) {
	tests := []struct {
		name   string
		ticket *Ticket
		want   string
	}{
		{
			name:   "General",
			ticket: &Ticket{Username: "gamer42", Type: TicketTypeGeneral},
			want:   "ticket-gamer42",
		},
		{
			name:   "Verification",
			ticket: &Ticket{Username: "gamer42", Type: TicketTypeVerification},
			want:   "verify-gamer42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.ticket.Name())
		})
	}
}

func TestTicketOpen(t *testing.T) {
	require.True(t, (&Ticket{Status: TicketStatusOpen}).Open())
	require.False(t, (&Ticket{Status: TicketStatusClosed}).Open())
}

func TestHasSupportRole(t *testing.T) {
	c := &TicketingConfig{SupportRoleIDs: []string{"a", "b"}}

	require.True(t, c.HasSupportRole([]string{"x", "b"}))
	require.False(t, c.HasSupportRole([]string{"x", "y"}))
	require.False(t, c.HasSupportRole(nil))
}

func TestAddSupportRole(t *testing.T) {
	c := new(TicketingConfig)

	c.AddSupportRole("a")
	c.AddSupportRole("b")
	c.AddSupportRole("a")
	require.Equal(t, []string{"a", "b"}, c.SupportRoleIDs)
}
