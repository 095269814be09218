package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/messages"
	"github.com/joelikes8/Bot-Product/pkg/roblox"
	"github.com/joelikes8/Bot-Product/pkg/ticketing"
	"github.com/joelikes8/Bot-Product/pkg/verification"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// VerifyConfirmButtonID is the custom ID prefix for the done button.
	VerifyConfirmButtonID = "verify_confirm"

	// VerifyCancelButtonID is the custom ID prefix for the cancel button.
	VerifyCancelButtonID = "verify_cancel"

	// VerifyHelpButtonID is the custom ID prefix for the need help button.
	VerifyHelpButtonID = "verify_help"
)

const (
	// VerifyCmdName is the command for linking a Roblox account.
	VerifyCmdName = "verify"

	// UpdateCmdName is the command for re-linking to a different account.
	UpdateCmdName = "update"

	// WhoisCmdName is the command for looking up a member's link.
	WhoisCmdName = "whois"

	// robloxUsernameOptName is the roblox username option.
	robloxUsernameOptName = "roblox_username"

	// userOptName is the user option on the whois command.
	userOptName = "user"
)

var (
	// verifyCmd is the command for linking a Roblox account.
	verifyCmd = &discordgo.ApplicationCommand{
		Name:        VerifyCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Link your Roblox account to your Discord account.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        robloxUsernameOptName,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Your Roblox username.",
				Required:    true,
			},
		},
	}

	// updateCmd is the command for re-linking to a different account.
	updateCmd = &discordgo.ApplicationCommand{
		Name:        UpdateCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Change which Roblox account is linked to your Discord account.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        robloxUsernameOptName,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The Roblox username to switch to.",
				Required:    true,
			},
		},
	}

	// whoisCmd is the command for looking up a link in either direction.
	whoisCmd = &discordgo.ApplicationCommand{
		Name:        WhoisCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Look up which Roblox account a member is verified as, or the reverse.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        userOptName,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to look up. Defaults to you.",
			},
			{
				Name:        robloxUsernameOptName,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "A Roblox username to look up instead.",
			},
		},
	}
)

func verifyCmdController(_ IApp, _ *discordgo.InteractionCreate) (commandProcessor, error) {
	return verifyCmdProcessor, nil
}

func updateCmdController(_ IApp, _ *discordgo.InteractionCreate) (commandProcessor, error) {
	return updateCmdProcessor, nil
}

func whoisCmdController(_ IApp, _ *discordgo.InteractionCreate) (commandProcessor, error) {
	return whoisCmdProcessor, nil
}

func verifyCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return startVerification(a, i, verification.ModeVerify)
}

func updateCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return startVerification(a, i, verification.ModeUpdate)
}

func startVerification(a IApp, i *discordgo.InteractionCreate, mode verification.Mode) error {
	username := i.ApplicationCommandData().Options[0].StringValue()

	s, err := a.Verifier().Start(context.Background(), i.Member.User.ID, i.Member.User.Username, username, mode)
	switch {
	case errors.Is(err, verification.ErrAlreadyLinked):
		return respondEphemeral(a, i, messages.ErrAlreadyVerified)
	case errors.Is(err, verification.ErrNotLinked):
		return respondEphemeral(a, i, messages.ErrNotVerified)
	case errors.Is(err, verification.ErrIdentityNotFound):
		return respondEphemeral(a, i, fmt.Sprintf(messages.ErrRobloxUserNotFound, username))
	case errors.Is(err, verification.ErrProviderUnavailable):
		return respondEphemeral(a, i, messages.ErrRobloxUnavailable)
	case err != nil:
		return fmt.Errorf("error starting verification: %w", err)
	}

	return respondChallenge(a, i, s)
}

// respondChallenge sends the ephemeral challenge prompt with the done,
// cancel and help buttons, all carrying the session ID.
func respondChallenge(a IApp, i *discordgo.InteractionCreate, s *verification.Session) error {
	description := fmt.Sprintf(`To verify that you own this account, please:
1. Go to your [Roblox profile](https://www.roblox.com/users/%d/profile)
2. Click the pencil icon next to your description
3. Add the code below anywhere in your description
4. Save your profile, then press **Done**`, s.RobloxID)

	if s.PreviousRobloxUsername != "" {
		description = fmt.Sprintf("You are switching your linked account from **%s** to **%s**.\n\n",
			s.PreviousRobloxUsername, s.RobloxUsername) + description
	}

	err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       fmt.Sprintf("Verify as %s", s.RobloxUsername),
					Description: description,
					Color:       0x5865f2,
					Thumbnail: &discordgo.MessageEmbedThumbnail{
						URL: a.Roblox().AvatarURL(s.RobloxID),
					},
					Fields: []*discordgo.MessageEmbedField{
						{
							Name:  "Your Code",
							Value: fmt.Sprintf("`%s`", s.Code),
						},
					},
				},
			},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Done",
							Style:    discordgo.SuccessButton,
							CustomID: fmt.Sprintf("%s:%s", VerifyConfirmButtonID, s.ID),
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: fmt.Sprintf("%s:%s", VerifyCancelButtonID, s.ID),
						},
						discordgo.Button{
							Label:    "Need help?",
							Style:    discordgo.SecondaryButton,
							CustomID: fmt.Sprintf("%s:%s", VerifyHelpButtonID, s.ID),
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

func whoisCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	target := i.Member.User
	robloxUsername := ""
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case userOptName:
			target = opt.UserValue(a.Session())
		case robloxUsernameOptName:
			robloxUsername = opt.StringValue()
		}
	}

	var link *entities.VerifiedLink
	var err error
	if robloxUsername != "" {
		// Reverse lookup. Resolving the handle first keeps the lookup
		// working across Roblox renames.
		user, rerr := a.Roblox().ResolveHandle(context.Background(), robloxUsername)
		if rerr != nil {
			if errors.Is(rerr, roblox.ErrUserNotFound) {
				return respondEphemeral(a, i, fmt.Sprintf(messages.ErrRobloxUserNotFound, robloxUsername))
			}
			return respondEphemeral(a, i, messages.ErrRobloxUnavailable)
		}
		link, err = a.LinkDal().GetLinkByRobloxID(context.Background(), user.ID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return respondEphemeral(a, i, fmt.Sprintf(messages.WhoisRobloxNotLinked, user.Name))
			}
			return fmt.Errorf("error getting link: %w", err)
		}
	} else {
		link, err = a.LinkDal().GetLinkByDiscordID(context.Background(), target.ID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return respondEphemeral(a, i, fmt.Sprintf(messages.WhoisNotVerified, target.ID))
			}
			return fmt.Errorf("error getting link: %w", err)
		}
	}

	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title: fmt.Sprintf("Whois %s", link.DiscordUsername),
					Color: 0x5865f2,
					Thumbnail: &discordgo.MessageEmbedThumbnail{
						URL: a.Roblox().AvatarURL(link.RobloxID),
					},
					Fields: []*discordgo.MessageEmbedField{
						{
							Name:   "Member",
							Value:  fmt.Sprintf("<@%s>", link.DiscordID),
							Inline: true,
						},
						{
							Name:   "Roblox Username",
							Value:  link.RobloxUsername,
							Inline: true,
						},
						{
							Name:   "Roblox ID",
							Value:  fmt.Sprintf("[%d](https://www.roblox.com/users/%d/profile)", link.RobloxID, link.RobloxID),
							Inline: true,
						},
						{
							Name:  "Verified",
							Value: link.VerifiedAt.String(),
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

// verifyConfirmHandler checks the challenge and completes the link.
func verifyConfirmHandler(a IApp, i *discordgo.InteractionCreate, sessionID string) error {
	s, err := a.Verifier().Session(sessionID)
	if err != nil {
		return respondUpdate(a, i, messages.ErrVerificationExpired)
	}
	if i.Member.User.ID != s.DiscordID {
		return respondEphemeral(a, i, messages.ErrNotYourSession)
	}

	link, err := a.Verifier().Confirm(context.Background(), s)
	switch {
	case errors.Is(err, verification.ErrChallengeNotFound):
		// Leave the prompt in place so the user can retry.
		return respondEphemeral(a, i, messages.ErrCodeNotFound)
	case errors.Is(err, verification.ErrProviderUnavailable):
		return respondEphemeral(a, i, messages.ErrRobloxUnavailable)
	case err != nil:
		return fmt.Errorf("error confirming verification: %w", err)
	}

	// Role grant and nickname are best effort; a missing permission must not
	// undo the verification.
	applyVerifiedPerks(a, i.GuildID, link)

	return respondUpdate(a, i, fmt.Sprintf(messages.VerificationSuccess, link.RobloxUsername))
}

func applyVerifiedPerks(a IApp, guildID string, link *entities.VerifiedLink) {
	guild, err := a.GuildDal().GetGuildByID(context.Background(), guildID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		a.Log().Error("Error getting guild configuration", slog.String(logging.KeyError, err.Error()))
		return
	}

	if guild != nil && guild.Verification.VerifiedRoleID != "" {
		if err := a.Session().GuildMemberRoleAdd(guildID, link.DiscordID, guild.Verification.VerifiedRoleID); err != nil {
			a.Log().Error("Error granting verified role",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyUser, link.DiscordID),
			)
		}
	}

	if err := a.Session().GuildMemberNickname(guildID, link.DiscordID, link.RobloxUsername); err != nil {
		a.Log().Error("Error setting nickname",
			slog.String(logging.KeyError, err.Error()),
			slog.String(logging.KeyUser, link.DiscordID),
		)
	}
}

// verifyCancelHandler tears the session down. An expired session is treated
// as already cancelled.
func verifyCancelHandler(a IApp, i *discordgo.InteractionCreate, sessionID string) error {
	s, err := a.Verifier().Session(sessionID)
	if err != nil {
		return respondUpdate(a, i, messages.VerificationCancelled)
	}
	if i.Member.User.ID != s.DiscordID {
		return respondEphemeral(a, i, messages.ErrNotYourSession)
	}

	a.Verifier().Cancel(s)
	return respondUpdate(a, i, messages.VerificationCancelled)
}

// verifyHelpHandler escalates a stuck verification into a support ticket,
// carrying the pending challenge so staff can pick it up. The session stays
// alive; the user can still finish verifying on their own.
func verifyHelpHandler(a IApp, i *discordgo.InteractionCreate, sessionID string) error {
	s, err := a.Verifier().Session(sessionID)
	if err != nil {
		return respondUpdate(a, i, messages.ErrVerificationExpired)
	}
	if i.Member.User.ID != s.DiscordID {
		return respondEphemeral(a, i, messages.ErrNotYourSession)
	}

	res, err := a.Tickets().Open(context.Background(), i.GuildID, i.Member.User.ID, i.Member.User.Username,
		entities.TicketTypeVerification, &ticketing.VerificationContext{
			RobloxUsername: s.RobloxUsername,
			RobloxID:       s.RobloxID,
			Code:           s.Code,
		})
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrNoChannelPermission)
		}
		return fmt.Errorf("error opening help ticket: %w", err)
	}

	if res.Existing {
		return respondEphemeral(a, i, fmt.Sprintf(messages.TicketAlreadyOpen, res.Ticket.ChannelID))
	}

	return respondEphemeral(a, i, fmt.Sprintf(messages.VerificationHelpTicket, res.Ticket.ChannelID))
}
