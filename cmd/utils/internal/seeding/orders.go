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

const deliveryFee = 60.0

type demoOrder struct {
	orderNumber string
	customer    string
	phone       string
	address     string
	status      string
	otp         string
	otpVerified bool
	age         time.Duration
	items       []demoOrderItem
}

type demoOrderItem struct {
	name     string
	price    float64
	quantity int
}

var demoOrders = []demoOrder{
	{
		orderNumber: "ORD-DM0001",
		customer:    "Shahriar Kabir",
		phone:       "+8801811000001",
		address:     "House 12, Road 5, Dhanmondi",
		status:      "pending",
		age:         10 * time.Minute,
		items: []demoOrderItem{
			{"Margherita Pizza", 450, 1},
			{"Mango Lassi", 120, 2},
		},
	},
	{
		orderNumber: "ORD-DM0002",
		customer:    "Mehnaz Sultana",
		phone:       "+8801811000002",
		address:     "Flat 4B, Gulshan Avenue",
		status:      "preparing",
		age:         25 * time.Minute,
		items: []demoOrderItem{
			{"Chicken Biryani", 380, 2},
		},
	},
	{
		orderNumber: "ORD-DM0003",
		customer:    "Arif Mahmud",
		phone:       "+8801811000003",
		address:     "Sector 7, Uttara",
		status:      "prepared",
		age:         40 * time.Minute,
		items: []demoOrderItem{
			{"Beef Burger", 320, 2},
			{"Chicken Wings", 280, 1},
		},
	},
	{
		orderNumber: "ORD-DM0004",
		customer:    "Nusrat Jahan",
		phone:       "+8801811000004",
		address:     "Banani Block C",
		status:      "out_for_delivery",
		otp:         "4821",
		age:         55 * time.Minute,
		items: []demoOrderItem{
			{"Pepperoni Pizza", 520, 1},
			{"Chocolate Lava Cake", 220, 1},
		},
	},
	{
		orderNumber: "ORD-DM0005",
		customer:    "Kamrul Hasan",
		phone:       "+8801811000005",
		address:     "Mirpur 10 Circle",
		status:      "delivered",
		otp:         "7359",
		otpVerified: true,
		age:         3 * time.Hour,
		items: []demoOrderItem{
			{"Caesar Salad", 250, 1},
			{"Margherita Pizza", 450, 1},
		},
	},
	{
		orderNumber: "ORD-DM0006",
		customer:    "Sumaiya Akter",
		phone:       "+8801811000006",
		address:     "Bashundhara Block D",
		status:      "cancelled",
		age:         5 * time.Hour,
		items: []demoOrderItem{
			{"Chicken Wings", 280, 2},
		},
	},
}

// SeedOrders creates demo orders covering every lifecycle status, with
// delivery codes present only from dispatch onwards.
func SeedOrders(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("orders")
	now := time.Now()

	for _, o := range demoOrders {
		items := make([]bson.M, 0, len(o.items))
		var subtotal float64
		for _, it := range o.items {
			items = append(items, bson.M{
				"id":       uuid.New(),
				"name":     it.name,
				"price":    it.price,
				"quantity": it.quantity,
			})
			subtotal += it.price * float64(it.quantity)
		}

		createdAt := now.Add(-o.age)
		doc := bson.M{
			"_id":              uuid.New(),
			"order_number":     o.orderNumber,
			"customer_name":    o.customer,
			"customer_phone":   o.phone,
			"customer_address": o.address,
			"items":            items,
			"subtotal":         subtotal,
			"tax":              0.0,
			"delivery_fee":     deliveryFee,
			"total":            subtotal + deliveryFee,
			"payment_method":   "Cash on Delivery",
			"status":           o.status,
			"otp_verified":     o.otpVerified,
			"model_version":    1,
			"created_at":       createdAt,
			"updated_at":       createdAt,
			"created_by":       "demo-seed",
		}
		if o.otp != "" {
			doc["delivery_otp"] = o.otp
		}

		_, err := collection.UpdateOne(ctx,
			bson.M{"order_number": o.orderNumber},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("cannot create demo order %s: %w", o.orderNumber, err)
		}
	}

	return nil
}
