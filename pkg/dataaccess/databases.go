package dataaccess

import (
	"context"
	"fmt"
	"sync"

	"github.com/joelikes8/Bot-Product/pkg/dataaccess/connection"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool shared by all DALs.
var MongoDB *mongo.Client

const mongoDatabase = "bloxbot"

var connectOnce sync.Once

// Connect establishes the shared Mongo connection pool. Concurrent first use
// is single-flighted; only the first caller's URI is used.
func Connect(uri string) error {
	var err error
	connectOnce.Do(func() {
		conn := new(connection.MongoDB)
		conn.ConnectionString = uri

		var client *mongo.Client
		client, err = conn.Connect()
		if err != nil {
			err = fmt.Errorf("error connecting to mongo: %w", err)
			return
		}
		MongoDB = client
	})
	return err
}

// Disconnect tears down the shared connection pool. It is safe to call when
// Connect was never reached.
func Disconnect(ctx context.Context) error {
	if MongoDB == nil {
		return nil
	}
	if err := MongoDB.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from mongo: %w", err)
	}
	MongoDB = nil
	return nil
}
