package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/cmd/utils/internal/seeding"
)

// SeedDemo applies demo seeding: menu items, staff, bookings and a spread
// of orders across every lifecycle status.
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	steps := []struct {
		id          string
		description string
		run         func(context.Context, *mongo.Database) error
	}{
		{"demo_menu_v1", "Create demo menu items across categories", seeding.SeedMenuItems},
		{"demo_staff_v1", "Create demo staff roster", seeding.SeedStaff},
		{"demo_bookings_v1", "Create demo table bookings", seeding.SeedBookings},
		{"demo_orders_v1", "Create demo orders across all lifecycle statuses", seeding.SeedOrders},
	}

	for _, step := range steps {
		if err := applyOnce(ctx, db, logger, step.id, step.description, step.run); err != nil {
			return err
		}
	}

	return nil
}

func connect(ctx context.Context, config *aqm.Config) (*mongo.Client, *mongo.Database, error) {
	mongoURL, _ := config.GetString("mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := config.GetString("mongo.name")
	if dbName == "" {
		dbName = "meetup"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(dbName), nil
}

func applyOnce(ctx context.Context, db *mongo.Database, logger aqm.Logger, seedID, description string, run func(context.Context, *mongo.Database) error) error {
	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": seedID})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}

	if count > 0 {
		logger.Info("Seed already applied, skipping", "seed", seedID)
		return nil
	}

	if err := run(ctx, db); err != nil {
		return fmt.Errorf("apply seed %s: %w", seedID, err)
	}

	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         seedID,
		"description": description,
		"applied_at":  time.Now(),
	})
	if err != nil {
		logger.Infof("Failed to mark seed %s as applied: %v", seedID, err)
	}

	logger.Info("Seed applied successfully", "seed", seedID)
	return nil
}
