// Package ticketing manages the support ticket lifecycle: creation of a
// per-user support channel, the single-open-ticket invariant, and closure.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joelikes8/Bot-Product/pkg/custom"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrPermissionDenied is returned when the chat platform refuses the
	// channel creation. No ticket row is written in that case.
	ErrPermissionDenied = errors.New("permission denied creating ticket channel")

	// ErrUnauthorized is returned when the acting user is neither the ticket
	// requester nor a support-role holder.
	ErrUnauthorized = errors.New("not authorized for this ticket action")
)

// VerificationContext is the pending challenge state carried into a
// verification ticket so a human agent does not need to re-derive it.
type VerificationContext struct {
	RobloxUsername string
	RobloxID       int64
	Code           string
}

// TicketStore persists tickets.
type TicketStore interface {
	// SaveTicket saves a ticket, keyed on (guild, channel).
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetOpenTicket gets the open ticket for a user in a guild, if any.
	GetOpenTicket(ctx context.Context, guildID, userID string) (*entities.Ticket, error)
}

// GuildStore reads per-guild configuration.
type GuildStore interface {
	// GetGuildByID gets a guild configuration by ID.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}

// ChannelService is the chat platform surface the workflow needs. Every call
// is treated as atomic; the workflow never depends on platform retries.
type ChannelService interface {
	// ChannelExists reports whether a channel still exists.
	ChannelExists(ctx context.Context, channelID string) bool

	// CreateTicketChannel creates a text channel visible only to the user and
	// the support roles, under the category when one is given. It returns
	// ErrPermissionDenied when the platform refuses the creation.
	CreateTicketChannel(ctx context.Context, guildID, name, topic, userID string, supportRoleIDs []string, categoryID string) (string, error)

	// PostWelcome posts the ticket welcome message, mentioning the user and
	// attaching the close affordance.
	PostWelcome(ctx context.Context, channelID, userID, content string) error

	// PostMessage posts a plain message into a channel.
	PostMessage(ctx context.Context, channelID, content string) error

	// RevokeSend removes the user's permission to send in a channel.
	RevokeSend(ctx context.Context, channelID, userID string) error
}

// OpenResult is the outcome of an Open call.
type OpenResult struct {
	// Ticket is the open ticket, newly created or pre-existing.
	Ticket *entities.Ticket

	// Existing is true when the user already had an open ticket and no new
	// channel was created.
	Existing bool
}

// Workflow drives the ticket lifecycle. The one-open-ticket-per-user
// invariant is enforced check-then-act at call time, not by a storage
// constraint; concurrent open requests from the same user can race.
type Workflow struct {
	// l is the logger.
	l *slog.Logger

	// store is the ticket store.
	store TicketStore

	// guilds is the guild configuration store.
	guilds GuildStore

	// channels is the chat platform surface.
	channels ChannelService
}

// NewWorkflow creates a new ticket workflow.
func NewWorkflow(l *slog.Logger, store TicketStore, guilds GuildStore, channels ChannelService) *Workflow {
	return &Workflow{
		l:        l.With(slog.String("component", "ticketing")),
		store:    store,
		guilds:   guilds,
		channels: channels,
	}
}

// Open creates a support channel and ticket row for the user, unless an open
// ticket already exists, in which case that ticket is returned and nothing is
// written. An open row whose backing channel has been deleted out-of-band is
// reconciled to closed before a new ticket is created.
func (w *Workflow) Open(ctx context.Context, guildID, userID, username, ticketType string, carried *VerificationContext) (*OpenResult, error) {
	existing, err := w.store.GetOpenTicket(ctx, guildID, userID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error checking open tickets: %w", err)
	}

	if existing != nil {
		if w.channels.ChannelExists(ctx, existing.ChannelID) {
			return &OpenResult{Ticket: existing, Existing: true}, nil
		}

		// The backing channel is gone; reconcile the stale row.
		w.l.Warn("Open ticket channel no longer exists, closing the row",
			slog.String(logging.KeyGuild, guildID),
			slog.String("channel_id", existing.ChannelID),
		)
		existing.Status = entities.TicketStatusClosed
		closedAt := custom.Now()
		existing.ClosedAt = &closedAt
		if err := w.store.SaveTicket(ctx, existing); err != nil {
			return nil, fmt.Errorf("error reconciling stale ticket: %w", err)
		}
	}

	guild, err := w.guilds.GetGuildByID(ctx, guildID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}
	if guild == nil {
		guild = &entities.Guild{ID: guildID}
	}

	ticket := &entities.Ticket{
		GuildID:   guildID,
		UserID:    userID,
		Username:  username,
		Status:    entities.TicketStatusOpen,
		Type:      ticketType,
		CreatedAt: custom.Now(),
	}
	if carried != nil {
		ticket.Verification = &entities.TicketVerification{
			RobloxUsername: carried.RobloxUsername,
			RobloxID:       carried.RobloxID,
			Code:           carried.Code,
		}
	}

	topic := fmt.Sprintf("Ticket created by %s", username)
	channelID, err := w.channels.CreateTicketChannel(ctx, guildID, ticket.Name(), topic, userID,
		guild.Ticketing.SupportRoleIDs, guild.Ticketing.CategoryID)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			// No row is written; the caller reports the refusal.
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}
	ticket.ChannelID = channelID

	if err := w.store.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// The welcome and alert are side effects of an already-created ticket;
	// failures are logged, not surfaced.
	if err := w.channels.PostWelcome(ctx, channelID, userID, w.welcomeContent(ticket)); err != nil {
		w.l.Error("Error posting ticket welcome", slog.String(logging.KeyError, err.Error()))
	}

	if ticket.Type == entities.TicketTypeVerification && len(guild.Ticketing.SupportRoleIDs) > 0 {
		alert := "Verification support needed: " + roleMentions(guild.Ticketing.SupportRoleIDs)
		if err := w.channels.PostMessage(ctx, channelID, alert); err != nil {
			w.l.Error("Error posting support alert", slog.String(logging.KeyError, err.Error()))
		}
	}

	w.l.Info("Ticket created",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, userID),
		slog.String("channel_id", channelID),
		slog.String("type", ticket.Type),
	)
	return &OpenResult{Ticket: ticket}, nil
}

// Close closes a ticket. Only the requester or a support-role holder may
// close; anyone else gets ErrUnauthorized and nothing changes. The channel is
// left in place read-only for the requester until staff delete it.
func (w *Workflow) Close(ctx context.Context, ticket *entities.Ticket, actorID string, actorRoleIDs []string) error {
	authorized := actorID == ticket.UserID
	if !authorized {
		guild, err := w.guilds.GetGuildByID(ctx, ticket.GuildID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("error getting guild configuration: %w", err)
		}
		authorized = guild != nil && guild.Ticketing.HasSupportRole(actorRoleIDs)
	}
	if !authorized {
		return ErrUnauthorized
	}

	if !ticket.Open() {
		return nil
	}

	ticket.Status = entities.TicketStatusClosed
	closedAt := custom.Now()
	ticket.ClosedAt = &closedAt
	ticket.ClosedBy = actorID

	if err := w.store.SaveTicket(ctx, ticket); err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}

	if err := w.channels.RevokeSend(ctx, ticket.ChannelID, ticket.UserID); err != nil {
		w.l.Error("Error revoking send permission", slog.String(logging.KeyError, err.Error()))
	}

	w.l.Info("Ticket closed",
		slog.String(logging.KeyGuild, ticket.GuildID),
		slog.String("channel_id", ticket.ChannelID),
		slog.String("closed_by", actorID),
	)
	return nil
}

// IsSupport reports whether the acting user holds a configured support role
// in the guild.
func (w *Workflow) IsSupport(ctx context.Context, guildID string, actorRoleIDs []string) (bool, error) {
	guild, err := w.guilds.GetGuildByID(ctx, guildID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return false, fmt.Errorf("error getting guild configuration: %w", err)
	}
	return guild != nil && guild.Ticketing.HasSupportRole(actorRoleIDs), nil
}

func (w *Workflow) welcomeContent(ticket *entities.Ticket) string {
	if ticket.Type == entities.TicketTypeVerification {
		content := "Your verification help ticket has been created!\n\n" +
			"Please describe the issue you're having with verification and a staff member will assist you shortly.\n\n"
		if v := ticket.Verification; v != nil {
			if v.RobloxUsername != "" {
				content += fmt.Sprintf("**Roblox Username:** %s\n", v.RobloxUsername)
			}
			if v.RobloxID != 0 {
				content += fmt.Sprintf("**Roblox ID:** %d\n", v.RobloxID)
			}
			if v.Code != "" {
				content += fmt.Sprintf("**Verification Code:** `%s`\n", v.Code)
			}
		}
		content += "\nTo close this ticket when your issue is resolved, use the button below."
		return content
	}

	return "Your ticket has been created!\n\n" +
		"Please describe your issue and a staff member will assist you shortly.\n\n" +
		"To close this ticket when your issue is resolved, use the button below."
}

func roleMentions(roleIDs []string) string {
	out := ""
	for i, id := range roleIDs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("<@&%s>", id)
	}
	return out
}
