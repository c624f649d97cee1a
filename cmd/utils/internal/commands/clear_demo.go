package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDemo removes seeded demo data. Accounts created through the app are
// untouched; only documents marked created_by=demo-seed go away.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	collections := []string{"orders", "bookings", "menu_items", "staff"}
	filter := bson.M{"created_by": "demo-seed"}

	for _, name := range collections {
		result, err := db.Collection(name).DeleteMany(ctx, filter)
		if err != nil {
			return fmt.Errorf("clear demo data from %s: %w", name, err)
		}
		logger.Info("Removed demo documents", "collection", name, "count", result.DeletedCount)
	}

	seedIDs := []string{"demo_menu_v1", "demo_staff_v1", "demo_bookings_v1", "demo_orders_v1"}
	_, err = db.Collection("_seeds").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": seedIDs}})
	if err != nil {
		return fmt.Errorf("clear seed markers: %w", err)
	}

	return nil
}
