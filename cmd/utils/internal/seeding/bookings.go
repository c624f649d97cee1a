package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedBookings creates a few demo table bookings in different states.
func SeedBookings(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("bookings")
	now := time.Now()
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	nextWeek := now.AddDate(0, 0, 7).Format("2006-01-02")

	bookings := []bson.M{
		{
			"_id":             uuid.New(),
			"customer_name":   "Ayesha Karim",
			"email":           "ayesha@example.com",
			"phone":           "+8801911000001",
			"guests":          2,
			"booking_date":    tomorrow,
			"booking_time":    "19:30",
			"special_request": "Window table if possible",
			"status":          "pending",
		},
		{
			"_id":           uuid.New(),
			"customer_name": "Tanvir Hossain",
			"email":         "tanvir@example.com",
			"phone":         "+8801911000002",
			"guests":        6,
			"booking_date":  nextWeek,
			"booking_time":  "20:00",
			"status":        "confirmed",
		},
		{
			"_id":           uuid.New(),
			"customer_name": "Rafiq Uddin",
			"email":         "rafiq@example.com",
			"phone":         "+8801911000003",
			"guests":        4,
			"booking_date":  tomorrow,
			"booking_time":  "13:00",
			"status":        "cancelled",
		},
	}

	for _, doc := range bookings {
		doc["created_at"] = now
		doc["updated_at"] = now
		doc["created_by"] = "demo-seed"

		_, err := collection.UpdateOne(ctx,
			bson.M{"email": doc["email"], "created_by": "demo-seed"},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("cannot create demo booking for %v: %w", doc["customer_name"], err)
		}
	}

	return nil
}
