package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
)

const connectTimeout = 10 * time.Second

type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewDB connects to uri and pings the primary before returning.
func NewDB(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetAppName("job-recommender").
		SetMaxPoolSize(25).
		SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("backend", "mongo"),
		zap.String("database", database),
	)

	return &DB{client: client, database: client.Database(database)}, nil
}

func (d *DB) Collection(name string) *mongo.Collection {
	return d.database.Collection(name)
}

func (d *DB) Health(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
