package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/request"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

// commandController resolves a slash command interaction to its processor.
type commandController func(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error)

// commandProcessor processes a slash command interaction.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

// componentProcessor processes a message component interaction. The arg is
// the part of the custom ID after the prefix, if any.
type componentProcessor func(a IApp, i *discordgo.InteractionCreate, arg string) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes interaction create events. Slash commands are
// routed by command name; message components by the custom ID prefix, where
// the custom ID is "<prefix>" or "<prefix>:<arg>".
func interactionHandler(a IApp, commands map[string]commandController, components map[string]componentProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			slashCommandHandler(a, commands, i)
		case discordgo.InteractionMessageComponent:
			componentHandler(a, components, i)
		}
	}
}

func slashCommandHandler(a IApp, controllers map[string]commandController, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	a.Log().Debug("Handling interaction " + name)

	controller, ok := controllers[name]
	if !ok {
		a.Log().Error("No controller found for command", slog.String("command", name))
		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	t := time.Now().UTC()
	defer func() {
		DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(t).Seconds())
	}()

	processor, err := controller(a, i)
	if err != nil {
		a.Log().Error(fmt.Sprintf("Error getting processor for command %s", name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	} else if processor == nil {
		// The controller has already responded.
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}

func componentHandler(a IApp, processors map[string]componentProcessor, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	prefix, arg, _ := strings.Cut(customID, ":")

	processor, ok := processors[prefix]
	if !ok {
		a.Log().Error("No processor found for component", slog.String("custom_id", customID))
		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := processor(a, i, arg); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing component %s", prefix),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}
