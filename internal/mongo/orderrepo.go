package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/internal/orders"
)

type OrderRepo struct {
	conn   *Conn
	logger aqm.Logger
}

func NewOrderRepo(conn *Conn, logger aqm.Logger) *OrderRepo {
	return &OrderRepo{
		conn:   conn,
		logger: logger,
	}
}

func (r *OrderRepo) collection() *mongo.Collection {
	return r.conn.Database().Collection("orders")
}

func (r *OrderRepo) Database() *mongo.Database {
	return r.conn.Database()
}

// EnsureIndexes creates the unique order number index and the status index.
func (r *OrderRepo) EnsureIndexes(ctx context.Context) error {
	numberIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, numberIndexModel); err != nil {
		return fmt.Errorf("cannot create order_number index: %w", err)
	}

	statusIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, statusIndexModel); err != nil {
		return fmt.Errorf("cannot create status index: %w", err)
	}

	return nil
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	_, err := r.collection().InsertOne(ctx, o)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return orders.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("cannot insert order: %w", err)
	}
	return nil
}

// Update persists the order only if the stored document still carries
// expectedVersion. The stored version is bumped atomically with the write.
func (r *OrderRepo) Update(ctx context.Context, o *orders.Order, expectedVersion int) error {
	o.UpdatedAt = time.Now()
	o.ModelVersion = expectedVersion + 1

	filter := bson.M{"_id": o.ID, "model_version": expectedVersion}
	update := bson.M{"$set": o}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		o.ModelVersion = expectedVersion
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		o.ModelVersion = expectedVersion
		count, err := r.collection().CountDocuments(ctx, bson.M{"_id": o.ID})
		if err != nil {
			return fmt.Errorf("cannot check order existence: %w", err)
		}
		if count > 0 {
			return orders.ErrVersionConflict
		}
		return orders.ErrNotFound
	}

	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) FindByNumber(ctx context.Context, orderNumber string) (*orders.Order, error) {
	var order orders.Order
	err := r.collection().FindOne(ctx, bson.M{"order_number": orderNumber}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find order by number: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.OrderFilter) ([]orders.Order, error) {
	query := bson.M{}

	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var list []orders.Order
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return list, nil
}
