package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/internal/menu"
)

type MenuItemRepo struct {
	conn   *Conn
	logger aqm.Logger
}

func NewMenuItemRepo(conn *Conn, logger aqm.Logger) *MenuItemRepo {
	return &MenuItemRepo{
		conn:   conn,
		logger: logger,
	}
}

func (r *MenuItemRepo) collection() *mongo.Collection {
	return r.conn.Database().Collection("menu_items")
}

func (r *MenuItemRepo) EnsureIndexes(ctx context.Context) error {
	categoryIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, categoryIndexModel); err != nil {
		return fmt.Errorf("cannot create category index: %w", err)
	}

	statusIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, statusIndexModel); err != nil {
		return fmt.Errorf("cannot create status index: %w", err)
	}

	return nil
}

func (r *MenuItemRepo) Create(ctx context.Context, item *menu.Item) error {
	_, err := r.collection().InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("cannot insert menu item: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.Item, error) {
	var item menu.Item
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find menu item: %w", err)
	}
	return &item, nil
}

func (r *MenuItemRepo) List(ctx context.Context) ([]*menu.Item, error) {
	return r.list(ctx, bson.M{})
}

func (r *MenuItemRepo) ListAvailable(ctx context.Context) ([]*menu.Item, error) {
	return r.list(ctx, bson.M{"status": menu.StatusAvailable})
}

func (r *MenuItemRepo) ListByCategory(ctx context.Context, category string) ([]*menu.Item, error) {
	return r.list(ctx, bson.M{"category": category})
}

func (r *MenuItemRepo) list(ctx context.Context, query bson.M) ([]*menu.Item, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*menu.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}

	return items, nil
}

func (r *MenuItemRepo) Save(ctx context.Context, item *menu.Item) error {
	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update menu item: %w", err)
	}

	if result.MatchedCount == 0 {
		return menu.ErrNotFound
	}

	return nil
}

func (r *MenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete menu item: %w", err)
	}

	if result.DeletedCount == 0 {
		return menu.ErrNotFound
	}

	return nil
}
