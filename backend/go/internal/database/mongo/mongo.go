package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Aivatar/backend/go/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client  *mongo.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns the MongoDB client. The connection is
// established once per process; later calls return the same instance.
func GetClient(cfg *config.MongoConfig) (*mongo.Client, error) {
	once.Do(func() {
		clientOptions := options.Client().ApplyURI(cfg.Address)
		if cfg.Username != "" && cfg.Password != "" {
			clientOptions.SetAuth(options.Credential{
				Username: cfg.Username,
				Password: cfg.Password,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			initErr = fmt.Errorf("unable to connect to MongoDB: %w", err)
			return
		}
		if err = c.Ping(ctx, nil); err != nil {
			initErr = fmt.Errorf("unable to ping MongoDB: %w", err)
			return
		}

		client = c
	})

	return client, initErr
}

// Close disconnects the singleton MongoDB client.
func Close(ctx context.Context) error {
	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("mongodb client not initialized")
	}
	return client.Ping(ctx, nil)
}
