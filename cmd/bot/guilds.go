package main

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/joelikes8/Bot-Product/pkg/logging"
)

func guildJoinedHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Info(fmt.Sprintf("Joined guild %s", g.Name))

		// Increment the total number of guilds.
		TotalDiscordGuilds.Inc()

		// Make the slash commands available in the new guild.
		if _, ok := a.registeredCommands[g.ID]; ok {
			return
		}
		if err := a.registerGuildCommands(g.ID); err != nil {
			a.Error("Error registering commands for guild", slog.String(logging.KeyError, err.Error()))
		}
	}
}

func guildLeaveHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Info(fmt.Sprintf("Left guild %s", g.ID))

		// Decrement the total number of guilds.
		TotalDiscordGuilds.Dec()

		delete(a.registeredCommands, g.ID)
	}
}
