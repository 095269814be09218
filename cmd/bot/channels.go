package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/ticketing"
)

// discordChannels adapts a discord session to the channel operations that the
// ticketing workflow needs.
type discordChannels struct {
	s *discordgo.Session
}

func newDiscordChannels(s *discordgo.Session) *discordChannels {
	return &discordChannels{s: s}
}

func (d *discordChannels) ChannelExists(_ context.Context, channelID string) bool {
	if channelID == "" {
		return false
	}
	_, err := d.s.Channel(channelID)
	return err == nil
}

func (d *discordChannels) CreateTicketChannel(_ context.Context, guildID, name, topic, userID string, supportRoleIDs []string, categoryID string) (string, error) {
	// Only the requester and the support roles can see the ticket.
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:    guildID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: 0,
			Deny:  discordgo.PermissionAll,
		},
		// The creator of the ticket can see the ticket.
		{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
	}
	for _, roleID := range supportRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	channel, err := d.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                topic,
		PermissionOverwrites: overwrites,
		ParentID:             categoryID,
	})
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
			return "", ticketing.ErrPermissionDenied
		}
		return "", fmt.Errorf("error creating channel: %w", err)
	}
	return channel.ID, nil
}

func (d *discordChannels) PostWelcome(_ context.Context, channelID, userID, content string) error {
	_, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> %s", userID, content),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Close Ticket", CloseEmoji),
						Style:    discordgo.DangerButton,
						CustomID: CloseTicketButtonID,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error sending welcome message: %w", err)
	}
	return nil
}

func (d *discordChannels) PostMessage(_ context.Context, channelID, content string) error {
	if _, err := d.s.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func (d *discordChannels) RevokeSend(_ context.Context, channelID, userID string) error {
	// Leave the channel readable so the requester keeps the transcript.
	if err := d.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionViewChannel, discordgo.PermissionSendMessages); err != nil {
		return fmt.Errorf("error revoking send permission: %w", err)
	}
	return nil
}
