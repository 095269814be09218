package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joelikes8/Bot-Product/pkg/dataaccess/monitoring"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketDalName = "ticket_dal"

type TicketDal interface {
	// SaveTicket saves a ticket, keyed on (guild, channel).
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets a ticket by guild and channel.
	GetTicket(ctx context.Context, guildID, channelID string) (*entities.Ticket, error)

	// GetOpenTicket gets the open ticket for a user in a guild, if any.
	GetOpenTicket(ctx context.Context, guildID, userID string) (*entities.Ticket, error)
}

type ticketDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal() TicketDal {
	l := slog.Default().With(slog.String(logging.KeyDal, ticketDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &ticketDalImpl{
		l:      l,
		client: MongoDB,
	}
}

func (d *ticketDalImpl) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	collection := d.client.Database(mongoDatabase).Collection("tickets")

	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "save_ticket", mongoDatabase, "tickets").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "save_ticket", mongoDatabase, "tickets"))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"guild_id": ticket.GuildID, "channel_id": ticket.ChannelID}, bson.M{"$set": ticket}, opts)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

func (d *ticketDalImpl) GetTicket(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	collection := d.client.Database(mongoDatabase).Collection("tickets")

	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "get_ticket", mongoDatabase, "tickets").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "get_ticket", mongoDatabase, "tickets"))
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := collection.FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	}).Decode(ticket)
	if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}

func (d *ticketDalImpl) GetOpenTicket(ctx context.Context, guildID, userID string) (*entities.Ticket, error) {
	collection := d.client.Database(mongoDatabase).Collection("tickets")

	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "get_open_ticket", mongoDatabase, "tickets").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "get_open_ticket", mongoDatabase, "tickets"))
	defer t.ObserveDuration()

	// Newest first, in case stale open rows were left behind.
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	ticket := new(entities.Ticket)
	err := collection.FindOne(ctx, bson.M{
		"guild_id": guildID,
		"user_id":  userID,
		"status":   entities.TicketStatusOpen,
	}, opts).Decode(ticket)
	if err != nil {
		return nil, fmt.Errorf("error getting open ticket: %w", err)
	}
	return ticket, nil
}
