package main

import (
	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/messages"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondUpdate replaces the message that the pressed component belongs to,
// clearing its components.
func respondUpdate(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
}

// hasRole reports whether the member holds the given role.
func hasRole(member *discordgo.Member, roleID string) bool {
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
