package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/messages"
	"github.com/joelikes8/Bot-Product/pkg/ticketing"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// OpenTicketButtonID is the ID for the open ticket button.
	OpenTicketButtonID = "open_ticket"

	// CloseTicketButtonID is the ID for the close ticket button.
	CloseTicketButtonID = "close_ticket"

	// DeleteTicketButtonID is the ID for the delete ticket button.
	DeleteTicketButtonID = "delete_ticket"
)

const (
	// TicketEmoji is the emoji for the open ticket button. (Envelope with arrow)
	TicketEmoji = "\U0001F4E9"

	// CloseEmoji is the emoji for the close button. (Padlock)
	CloseEmoji = "\U0001F510"

	// DeleteEmoji is the emoji for the delete button. (Cross)
	DeleteEmoji = "❌"
)

// deleteDelay is how long the bot waits between announcing the deletion of a
// ticket channel and deleting it.
const deleteDelay = 5 * time.Second

func sendPanelMessage(a IApp, channel *discordgo.Channel) (*discordgo.Message, error) {
	const messageText = `Need help?
Click the button below to open a support ticket and a staff member will be with you shortly.`

	// Create the message.
	message := discordgo.MessageSend{
		Content: messageText,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Open Ticket", TicketEmoji),
						Style:    discordgo.PrimaryButton,
						CustomID: OpenTicketButtonID,
					},
				},
			},
		},
	}

	// Send the message.
	msg, err := a.Session().ChannelMessageSendComplex(channel.ID, &message)
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", err)
	}

	return msg, nil
}

// openTicketHandler is the handler for the open ticket button.
func openTicketHandler(a IApp, i *discordgo.InteractionCreate, _ string) error {
	res, err := a.Tickets().Open(context.Background(), i.GuildID, i.Member.User.ID, i.Member.User.Username,
		entities.TicketTypeGeneral, nil)
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrNoChannelPermission)
		}
		return fmt.Errorf("error opening ticket: %w", err)
	}

	if res.Existing {
		return respondEphemeral(a, i, fmt.Sprintf(messages.TicketAlreadyOpen, res.Ticket.ChannelID))
	}

	// Respond to the interaction saying that the ticket has been created in
	// channel <channel>.
	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Ticket Created",
					Description: fmt.Sprintf(messages.TicketCreated, res.Ticket.ChannelID),
					Color:       0x00ff00,
					Fields: []*discordgo.MessageEmbedField{
						{
							Name:   "Ticket Name",
							Value:  res.Ticket.Name(),
							Inline: true,
						},
						{
							Name:   "Ticket Channel",
							Value:  fmt.Sprintf("<#%s>", res.Ticket.ChannelID),
							Inline: true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// closeTicketHandler is the handler for the close ticket button.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate, _ string) error {
	// Get the ticket for the channel the button was pressed in.
	ticket, err := a.TicketDal().GetTicket(context.Background(), i.GuildID, i.ChannelID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return respondEphemeral(a, i, messages.ErrNotTicketChannel)
		}
		return fmt.Errorf("error getting ticket: %w", err)
	}

	if err := a.Tickets().Close(context.Background(), ticket, i.Member.User.ID, i.Member.Roles); err != nil {
		if errors.Is(err, ticketing.ErrUnauthorized) {
			return respondEphemeral(a, i, messages.ErrTicketCloseUnauthorized)
		}
		return fmt.Errorf("error closing ticket: %w", err)
	}

	// Announce the closure in the channel, with the delete affordance for
	// the support staff.
	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: messages.TicketClosed,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    fmt.Sprintf("%s Delete Channel", DeleteEmoji),
							Style:    discordgo.DangerButton,
							CustomID: DeleteTicketButtonID,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// deleteTicketHandler is the handler for the delete ticket button. Only
// support-role holders can delete the channel.
func deleteTicketHandler(a IApp, i *discordgo.InteractionCreate, _ string) error {
	support, err := a.Tickets().IsSupport(context.Background(), i.GuildID, i.Member.Roles)
	if err != nil {
		return fmt.Errorf("error checking support roles: %w", err)
	}
	if !support {
		return respondEphemeral(a, i, messages.ErrTicketDeleteUnauthorized)
	}

	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Deleting this channel in %d seconds.", int(deleteDelay.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	channelID := i.ChannelID
	go func() {
		time.Sleep(deleteDelay)
		if _, err := a.Session().ChannelDelete(channelID); err != nil {
			a.Log().Error("Error deleting ticket channel",
				slog.String(logging.KeyError, err.Error()),
				slog.String("channel_id", channelID),
			)
		}
	}()
	return nil
}
