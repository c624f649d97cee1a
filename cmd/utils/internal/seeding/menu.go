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

type demoMenuItem struct {
	name        string
	category    string
	price       float64
	description string
	status      string
}

var demoMenuItems = []demoMenuItem{
	{"Margherita Pizza", "Pizza", 450, "Tomato, mozzarella and fresh basil", "available"},
	{"Pepperoni Pizza", "Pizza", 520, "Loaded with pepperoni and extra cheese", "available"},
	{"Chicken Biryani", "Rice", 380, "Fragrant basmati rice with spiced chicken", "available"},
	{"Beef Burger", "Burgers", 320, "Double patty with cheddar and house sauce", "available"},
	{"Chicken Wings", "Starters", 280, "Six pieces with hot sauce", "available"},
	{"Caesar Salad", "Salads", 250, "Romaine, parmesan and croutons", "available"},
	{"Chocolate Lava Cake", "Desserts", 220, "Warm cake with a molten center", "available"},
	{"Mango Lassi", "Drinks", 120, "Sweet yogurt drink with mango pulp", "available"},
	{"Seasonal Soup", "Starters", 180, "Ask the kitchen what is on today", "unavailable"},
}

// SeedMenuItems creates the demo menu across categories.
func SeedMenuItems(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("menu_items")
	now := time.Now()

	for _, item := range demoMenuItems {
		doc := bson.M{
			"_id":         uuid.New(),
			"name":        item.name,
			"category":    item.category,
			"price":       item.price,
			"description": item.description,
			"image":       "",
			"status":      item.status,
			"created_at":  now,
			"updated_at":  now,
			"created_by":  "demo-seed",
		}

		_, err := collection.UpdateOne(ctx,
			bson.M{"name": item.name, "created_by": "demo-seed"},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("cannot create demo menu item %s: %w", item.name, err)
		}
	}

	return nil
}
