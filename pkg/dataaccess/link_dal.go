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

const linkDalName = "link_dal"

type LinkDal interface {
	// SaveLink inserts or fully overwrites the link for a Discord account.
	SaveLink(ctx context.Context, link *entities.VerifiedLink) error

	// GetLinkByDiscordID gets the link for a Discord account.
	GetLinkByDiscordID(ctx context.Context, discordID string) (*entities.VerifiedLink, error)

	// GetLinkByRobloxID gets a link by Roblox user ID. Roblox IDs are not
	// required to be unique; the first match is returned.
	GetLinkByRobloxID(ctx context.Context, robloxID int64) (*entities.VerifiedLink, error)
}

type linkDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewLinkDal creates a new verified link data access layer.
func NewLinkDal() LinkDal {
	l := slog.Default().With(slog.String(logging.KeyDal, linkDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &linkDalImpl{
		l:      l,
		client: MongoDB,
	}
}

func (d *linkDalImpl) SaveLink(ctx context.Context, link *entities.VerifiedLink) error {
	collection := d.client.Database(mongoDatabase).Collection("verified_links")

	monitoring.MongoTotalRequests.WithLabelValues(linkDalName, "save_link", mongoDatabase, "verified_links").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(linkDalName, "save_link", mongoDatabase, "verified_links"))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"discord_id": link.DiscordID}, bson.M{"$set": link}, opts)
	if err != nil {
		return fmt.Errorf("error updating link: %w", err)
	}
	return nil
}

func (d *linkDalImpl) GetLinkByDiscordID(ctx context.Context, discordID string) (*entities.VerifiedLink, error) {
	collection := d.client.Database(mongoDatabase).Collection("verified_links")

	monitoring.MongoTotalRequests.WithLabelValues(linkDalName, "get_link_by_discord_id", mongoDatabase, "verified_links").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(linkDalName, "get_link_by_discord_id", mongoDatabase, "verified_links"))
	defer t.ObserveDuration()

	link := new(entities.VerifiedLink)
	if err := collection.FindOne(ctx, bson.M{"discord_id": discordID}).Decode(link); err != nil {
		return nil, fmt.Errorf("error getting link: %w", err)
	}
	return link, nil
}

func (d *linkDalImpl) GetLinkByRobloxID(ctx context.Context, robloxID int64) (*entities.VerifiedLink, error) {
	collection := d.client.Database(mongoDatabase).Collection("verified_links")

	monitoring.MongoTotalRequests.WithLabelValues(linkDalName, "get_link_by_roblox_id", mongoDatabase, "verified_links").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(linkDalName, "get_link_by_roblox_id", mongoDatabase, "verified_links"))
	defer t.ObserveDuration()

	link := new(entities.VerifiedLink)
	if err := collection.FindOne(ctx, bson.M{"roblox_id": robloxID}).Decode(link); err != nil {
		return nil, fmt.Errorf("error getting link: %w", err)
	}
	return link, nil
}
