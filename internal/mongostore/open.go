// Package mongostore implements the qna store ports on top of MongoDB.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Open connects to MongoDB and verifies the connection with a ping. The
// returned client is acquired once at process start and released by the
// caller at shutdown.
func Open(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectErr := client.Disconnect(ctx)
		if disconnectErr != nil && logger != nil {
			logger.Warn("disconnect after failed ping", zap.Error(disconnectErr))
		}
		return nil, err
	}

	if logger != nil {
		logger.Info("mongodb connected")
	}

	return client, nil
}
