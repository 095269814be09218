package entities

import (
	"fmt"

	"github.com/joelikes8/Bot-Product/pkg/custom"
)

const (
	// TicketStatusOpen is the status of a ticket that is open.
	TicketStatusOpen = "open"

	// TicketStatusClosed is the status of a ticket that has been closed.
	TicketStatusClosed = "closed"
)

const (
	// TicketTypeGeneral is a general support ticket.
	TicketTypeGeneral = "general"

	// TicketTypeVerification is a ticket opened to get help with the
	// verification process.
	TicketTypeVerification = "verification"
)

// Ticket is one support ticket. One row is kept per support channel ever
// created; deleting the backing channel does not remove the row.
type Ticket struct {
	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the channel backing the ticket. Unique within
	// the guild.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// UserID is the ID of the user that opened the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// Username is the username of the user that opened the ticket.
	Username string `json:"username" bson:"username"`

	// Status is either open or closed.
	Status string `json:"status" bson:"status"`

	// Type is the kind of ticket, general or verification.
	Type string `json:"ticket_type" bson:"ticket_type"`

	// Verification carries the pending challenge state when the ticket was
	// opened from a failed verification, so staff do not have to re-derive it.
	Verification *TicketVerification `json:"verification,omitempty" bson:"verification,omitempty"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket was closed. Nil while open.
	ClosedAt *custom.Datetime `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// TicketVerification is the challenge state carried into a verification
// ticket.
type TicketVerification struct {
	// RobloxUsername is the handle the user was trying to verify.
	RobloxUsername string `json:"roblox_username" bson:"roblox_username"`

	// RobloxID is the resolved Roblox user ID.
	RobloxID int64 `json:"roblox_id" bson:"roblox_id"`

	// Code is the challenge code that was issued.
	Code string `json:"code" bson:"code"`
}

// Name returns the channel name for the ticket, e.g. "ticket-gamer42" or
// "verify-gamer42".
func (t *Ticket) Name() string {
	if t.Type == TicketTypeVerification {
		return fmt.Sprintf("verify-%s", t.Username)
	}
	return fmt.Sprintf("ticket-%s", t.Username)
}

// Open reports whether the ticket is still open.
func (t *Ticket) Open() bool {
	return t.Status == TicketStatusOpen
}
