package connection

import (
	"context"
	"fmt"
	"time"

	dbMonitoring "github.com/joelikes8/Bot-Product/pkg/dataaccess/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB describes how to reach the Mongo deployment. Either the full
// connection string is provided, or it is generated from the parts.
type MongoDB struct {
	ConnectionString string
	Username         string
	Password         string
	Host             string
	Port             string
	Args             string
}

func (m *MongoDB) GenerateConnectionString() {
	cs := "mongodb+srv://"
	if m.Username != "" && m.Password != "" {
		cs += m.Username + ":" + m.Password + "@"
	} else if m.Username != "" {
		cs += m.Username + "@"
	}

	cs += m.Host

	if m.Port != "" {
		cs += ":" + m.Port
	}

	if m.Args != "" {
		cs += "/?" + m.Args
	}

	m.ConnectionString = cs
}

func (m *MongoDB) Ping(ctx context.Context, client *mongo.Client) error {
	t := prometheus.NewTimer(dbMonitoring.MongoLatency.WithLabelValues("connection", "ping", "-", "-"))
	defer t.ObserveDuration()
	dbMonitoring.MongoTotalRequests.WithLabelValues("connection", "ping", "-", "-").Inc()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("error pinging mongo: %w", err)
	}
	return nil
}

func (m *MongoDB) Connect() (*mongo.Client, error) {
	if m.ConnectionString == "" {
		m.GenerateConnectionString()
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(m.ConnectionString).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := m.Ping(context.Background(), client); err != nil {
		return nil, err
	}
	return client, nil
}
