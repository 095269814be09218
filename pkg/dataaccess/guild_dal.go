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

const guildDalName = "guild_dal"

type GuildDal interface {
	// SaveGuild saves a guild configuration.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets a guild configuration by ID.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}

type guildDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal() GuildDal {
	l := slog.Default().With(slog.String(logging.KeyDal, guildDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildDalImpl{
		l:      l,
		client: MongoDB,
	}
}

func (g *guildDalImpl) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	collection := g.client.Database(mongoDatabase).Collection("guilds")

	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, "save_guild", mongoDatabase, "guilds").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, "save_guild", mongoDatabase, "guilds"))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

func (g *guildDalImpl) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	collection := g.client.Database(mongoDatabase).Collection("guilds")

	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, "get_guild_by_id", mongoDatabase, "guilds").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, "get_guild_by_id", mongoDatabase, "guilds"))
	defer t.ObserveDuration()

	guild := new(entities.Guild)
	if err := collection.FindOne(ctx, bson.M{"id": id}).Decode(guild); err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}
