package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Conn owns the MongoDB client shared by all repositories in the process.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewConn(config *aqm.Config, logger aqm.Logger) *Conn {
	return &Conn{
		logger: logger,
		config: config,
	}
}

func (c *Conn) Start(ctx context.Context) error {
	mongoURL, _ := c.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := c.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "meetup"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	c.client = client
	c.db = client.Database(dbName)

	c.logger.Infof("Connected to MongoDB: %s, database: %s", mongoURL, dbName)
	return nil
}

func (c *Conn) Stop(ctx context.Context) error {
	if c.client != nil {
		if err := c.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		c.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (c *Conn) Database() *mongo.Database {
	return c.db
}
