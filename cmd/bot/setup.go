package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/messages"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// setupCmdName is the command for all configuration commands.
	setupCmdName = "setup"

	// supportRoleCmdName is the sub command for adding a support role.
	supportRoleCmdName = "support_role"

	// categoryCmdName is the sub command for setting the ticket category.
	categoryCmdName = "category"

	// verifiedRoleCmdName is the sub command for setting the verified role.
	verifiedRoleCmdName = "verified_role"

	// panelCmdName is the sub command for posting the ticket panel.
	panelCmdName = "panel"

	// roleOptName is the text for the role option.
	roleOptName = "role"

	// channelOptName is the text for the channel option.
	channelOptName = "channel"
)

var (
	// setupCmd is the command for all configuration commands.
	setupCmd = &discordgo.ApplicationCommand{
		Name:        setupCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "This is the command for all configuration commands.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        supportRoleCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Add a role that can view and manage tickets.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        roleOptName,
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "The role to add as a support role.",
						Required:    true,
					},
				},
			},
			{
				Name:        categoryCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Set the category that new ticket channels are created under.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        channelOptName,
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "The category for ticket channels.",
						Required:    true,
					},
				},
			},
			{
				Name:        verifiedRoleCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Set the role granted to members when they verify.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        roleOptName,
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "The role to grant on verification.",
						Required:    true,
					},
				},
			},
			{
				Name:        panelCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Post the open-ticket panel in the channel you specify.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        channelOptName,
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "The channel to post the panel in.",
						Required:    true,
					},
				},
			},
		},
	}
)

func setupCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	// Ensure the user is an administrator.
	if i.Member.Permissions&discordgo.PermissionAdministrator != discordgo.PermissionAdministrator {
		if err := respondEphemeral(a, i, messages.ErrAdminOnly); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	// Extract the sub command.
	subCmd := i.ApplicationCommandData().Options[0].Name

	switch subCmd {
	case supportRoleCmdName:
		return supportRoleCmdProcessor, nil
	case categoryCmdName:
		return categoryCmdProcessor, nil
	case verifiedRoleCmdName:
		return verifiedRoleCmdProcessor, nil
	case panelCmdName:
		return panelCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// getOrCreateGuild loads the guild configuration, defaulting to an empty one
// when the guild has never been configured.
func getOrCreateGuild(a IApp, guildID string) (*entities.Guild, error) {
	guild, err := a.GuildDal().GetGuildByID(context.Background(), guildID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	if guild == nil {
		guild = &entities.Guild{
			ID: guildID,
		}
	}
	return guild, nil
}

// supportRoleCmdProcessor adds a support role to the guild configuration.
func supportRoleCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	// Extract the role provided.
	role := i.ApplicationCommandData().Options[0].Options[0].RoleValue(a.Session(), i.GuildID)

	guild, err := getOrCreateGuild(a, i.GuildID)
	if err != nil {
		return err
	}

	guild.Ticketing.AddSupportRole(role.ID)

	if err := a.GuildDal().SaveGuild(context.Background(), guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	if err := respondEphemeral(a, i, fmt.Sprintf("<@&%s> has been added as a support role.", role.ID)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// categoryCmdProcessor sets the category for new ticket channels.
func categoryCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	// Extract the channel provided.
	channel := i.ApplicationCommandData().Options[0].Options[0].ChannelValue(a.Session())

	// Ensure the channel is a category.
	if channel.Type != discordgo.ChannelTypeGuildCategory {
		return respondEphemeral(a, i, "You must provide a category channel for tickets.")
	}

	guild, err := getOrCreateGuild(a, i.GuildID)
	if err != nil {
		return err
	}

	guild.Ticketing.CategoryID = channel.ID

	if err := a.GuildDal().SaveGuild(context.Background(), guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	if err := respondEphemeral(a, i, fmt.Sprintf("Tickets will now be created under **%s**.", channel.Name)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// verifiedRoleCmdProcessor sets the role granted on verification.
func verifiedRoleCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	// Extract the role provided.
	role := i.ApplicationCommandData().Options[0].Options[0].RoleValue(a.Session(), i.GuildID)

	guild, err := getOrCreateGuild(a, i.GuildID)
	if err != nil {
		return err
	}

	guild.Verification.VerifiedRoleID = role.ID

	if err := a.GuildDal().SaveGuild(context.Background(), guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	if err := respondEphemeral(a, i, fmt.Sprintf("Members will now be given <@&%s> when they verify.", role.ID)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// panelCmdProcessor posts the open-ticket panel in the given channel.
func panelCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	// Extract the channel provided.
	channel := i.ApplicationCommandData().Options[0].Options[0].ChannelValue(a.Session())

	// Ensure the channel is a text channel.
	if channel.Type != discordgo.ChannelTypeGuildText {
		return respondEphemeral(a, i, "You must provide a text channel for the ticket panel.")
	}

	guild, err := getOrCreateGuild(a, i.GuildID)
	if err != nil {
		return err
	}

	msg := new(discordgo.Message)

	// Check to see if the panel message still exists.
	if guild.Ticketing.PanelMessageID != "" && guild.Ticketing.PanelChannelID == channel.ID {
		msg, err = a.Session().ChannelMessage(channel.ID, guild.Ticketing.PanelMessageID)
		// If the message does not exist, clear the message ID.
		if err != nil {
			var restErr *discordgo.RESTError
			if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
				guild.Ticketing.PanelMessageID = ""
			} else {
				return fmt.Errorf("error getting panel message: %w", err)
			}
		}

		if msg == nil {
			guild.Ticketing.PanelMessageID = ""
		}
	} else {
		guild.Ticketing.PanelMessageID = ""
	}

	// If the panel message ID is empty, send a new message.
	if guild.Ticketing.PanelMessageID == "" {
		msg, err = sendPanelMessage(a, channel)
		if err != nil {
			return fmt.Errorf("error sending panel message: %w", err)
		}
	}

	guild.Ticketing.PanelChannelID = channel.ID
	guild.Ticketing.PanelMessageID = msg.ID

	// Save the guild.
	if err := a.GuildDal().SaveGuild(context.Background(), guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	if err := respondEphemeral(a, i, fmt.Sprintf("The ticket panel has been posted in <#%s>.", channel.ID)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}
