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

var demoStaff = []struct {
	name  string
	role  string
	email string
	phone string
}{
	{"Nadia Rahman", "Manager", "nadia@meetup.example", "+8801711000001"},
	{"Imran Chowdhury", "Head Chef", "imran@meetup.example", "+8801711000002"},
	{"Farhan Ahmed", "Delivery Rider", "farhan@meetup.example", "+8801711000003"},
	{"Sadia Islam", "Waiter", "sadia@meetup.example", "+8801711000004"},
}

// SeedStaff creates the demo staff roster.
func SeedStaff(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("staff")
	now := time.Now()

	for _, member := range demoStaff {
		doc := bson.M{
			"_id":        uuid.New(),
			"name":       member.name,
			"role":       member.role,
			"email":      member.email,
			"phone":      member.phone,
			"active":     true,
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		}

		_, err := collection.UpdateOne(ctx,
			bson.M{"email": member.email, "created_by": "demo-seed"},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("cannot create demo staff member %s: %w", member.name, err)
		}
	}

	return nil
}
