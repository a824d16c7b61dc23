// Package database owns the MongoDB client.
//
// It handles:
//   - building client options from config (URI, connect timeout)
//   - wiring command monitoring (query log, slow command log, New Relic)
//   - connecting and pinging at startup so a bad URI or an unreachable
//     deployment fails fast
//   - disconnecting deterministically on shutdown
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/deppfellow/shelter/internal/config"
	loggerConfig "github.com/deppfellow/shelter/internal/logger"
)

// DisconnectTimeout bounds how long Close waits for in-flight operations.
const DisconnectTimeout = 10 * time.Second

// Database wraps the MongoDB client, the selected database and a logger.
//
// The client is safe for concurrent use and lives for the whole process.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database

	collection string
	log        *zerolog.Logger
}

// New connects to MongoDB and verifies the connection.
//
// Behavior:
//   - Apply the ATLAS_URI connection string
//   - Attach New Relic datastore segments if the agent is running
//   - Log every command in the local env, and slow commands everywhere
//   - Connect and ping within database.connect_timeout
//
// A failure at any step returns an error; nothing is retried.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout)

	if monitor := newMonitor(cfg, logger, loggerService); monitor != nil {
		clientOpts.SetMonitor(monitor)
	}

	// The timeout covers startup only; later operations use the caller's context.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), DisconnectTimeout)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info().
		Str("database", cfg.Database.Name).
		Str("collection", cfg.Database.Collection).
		Msg("connected to the database")

	return &Database{
		Client:     client,
		DB:         client.Database(cfg.Database.Name),
		collection: cfg.Database.Collection,
		log:        logger,
	}, nil
}

// newMonitor assembles the command monitors that apply to this env.
// It returns nil when none do.
func newMonitor(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) *event.CommandMonitor {
	var monitors []*event.CommandMonitor

	if loggerService.GetApplication() != nil {
		monitors = append(monitors, newSegmentMonitor(cfg.Database.Name))
	}

	var commandLogger *zerolog.Logger
	if cfg.Primary.Env == "local" {
		level := loggerConfig.GetMongoCommandLogLevel(logger.GetLevel())
		l := loggerConfig.NewMongoLogger(level)
		commandLogger = &l
	}

	var slowThreshold time.Duration
	if cfg.Observability != nil {
		slowThreshold = cfg.Observability.Logging.SlowQueryThreshold
	}

	if commandLogger != nil || slowThreshold > 0 {
		monitors = append(monitors, newLogMonitor(logger, commandLogger, slowThreshold))
	}

	return chainMonitors(monitors...)
}

// Collection returns the handle for the configured collection.
func (db *Database) Collection() *mongo.Collection {
	return db.DB.Collection(db.collection)
}

// Ping checks that the primary is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting up to DisconnectTimeout.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection")

	ctx, cancel := context.WithTimeout(context.Background(), DisconnectTimeout)
	defer cancel()

	if err := db.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
