package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/joelikes8/Bot-Product/pkg/dataaccess"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/request"
	"github.com/joelikes8/Bot-Product/pkg/roblox"
	"github.com/joelikes8/Bot-Product/pkg/ticketing"
	"github.com/joelikes8/Bot-Product/pkg/verification"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IApp is the interface for the application.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// GuildDal returns the guild data access layer.
	GuildDal() dataaccess.GuildDal

	// TicketDal returns the ticket data access layer.
	TicketDal() dataaccess.TicketDal

	// LinkDal returns the verified link data access layer.
	LinkDal() dataaccess.LinkDal

	// Roblox returns the Roblox API client.
	Roblox() *roblox.Client

	// Verifier returns the verification workflow.
	Verifier() *verification.Workflow

	// Tickets returns the ticketing workflow.
	Tickets() *ticketing.Workflow
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// gd is the guild data access layer.
	gd dataaccess.GuildDal

	// td is the ticket data access layer.
	td dataaccess.TicketDal

	// ld is the verified link data access layer.
	ld dataaccess.LinkDal

	// rb is the Roblox API client.
	rb *roblox.Client

	// verifier is the verification workflow.
	verifier *verification.Workflow

	// tickets is the ticketing workflow.
	tickets *ticketing.Workflow

	// registeredCommands holds the slash commands created per guild, so
	// they can be removed again on shutdown.
	registeredCommands map[string][]*discordgo.ApplicationCommand
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger:             l,
		r:                  r,
		registeredCommands: make(map[string][]*discordgo.ApplicationCommand),
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.buildServices()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

// buildServices wires the data access layers, the Roblox client and the
// workflows. Mongo has already been connected by this point.
func (a *App) buildServices() {
	a.gd = dataaccess.NewGuildDal()
	a.td = dataaccess.NewTicketDal()
	a.ld = dataaccess.NewLinkDal()

	a.rb = roblox.NewClient(a.Logger)

	a.verifier = verification.NewWorkflow(a.Logger, a.rb, a.ld, verification.DefaultSessionTTL)
	a.tickets = ticketing.NewWorkflow(a.Logger, a.td, a.gd, newDiscordChannels(a.s))
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}

	// Close the connection to MongoDB.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dataaccess.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from MongoDB: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		slog.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "", false)
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Event counter. This handler receives every gateway event.
	a.s.AddHandler(func(_ *discordgo.Session, e *discordgo.Event) {
		if e.Type != "" {
			TotalDiscordEvents.WithLabelValues(e.Type).Inc()
		} else {
			TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	})

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			verifyCmd.Name: verifyCmdController,
			updateCmd.Name: updateCmdController,
			whoisCmd.Name:  whoisCmdController,
			setupCmd.Name:  setupCmdController,
		},
		// Button Controllers, keyed on the custom ID prefix.
		map[string]componentProcessor{
			VerifyConfirmButtonID: verifyConfirmHandler,
			VerifyCancelButtonID:  verifyCancelHandler,
			VerifyHelpButtonID:    verifyHelpHandler,
			OpenTicketButtonID:    openTicketHandler,
			CloseTicketButtonID:   closeTicketHandler,
			DeleteTicketButtonID:  deleteTicketHandler,
		}))
	return nil
}

// guildCommands are the slash commands registered in every guild.
func guildCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{verifyCmd, updateCmd, whoisCmd, setupCmd}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		if err := a.registerGuildCommands(g.ID); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) registerGuildCommands(guildID string) error {
	for _, cmd := range guildCommands() {
		created, err := a.s.ApplicationCommandCreate(ApplicationId, guildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, guildID, err)
		}
		a.registeredCommands[guildID] = append(a.registeredCommands[guildID], created)
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Delete the slash commands that were registered for each guild.
	for guildID, cmds := range a.registeredCommands {
		for _, cmd := range cmds {
			if err := a.s.ApplicationCommandDelete(ApplicationId, guildID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guildID, err)
			}
		}
		delete(a.registeredCommands, guildID)
	}
	return nil
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) GuildDal() dataaccess.GuildDal {
	return a.gd
}

func (a *App) TicketDal() dataaccess.TicketDal {
	return a.td
}

func (a *App) LinkDal() dataaccess.LinkDal {
	return a.ld
}

func (a *App) Roblox() *roblox.Client {
	return a.rb
}

func (a *App) Verifier() *verification.Workflow {
	return a.verifier
}

func (a *App) Tickets() *ticketing.Workflow {
	return a.tickets
}
