package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/internal/staff"
)

type StaffRepo struct {
	conn   *Conn
	logger aqm.Logger
}

func NewStaffRepo(conn *Conn, logger aqm.Logger) *StaffRepo {
	return &StaffRepo{
		conn:   conn,
		logger: logger,
	}
}

func (r *StaffRepo) collection() *mongo.Collection {
	return r.conn.Database().Collection("staff")
}

func (r *StaffRepo) EnsureIndexes(ctx context.Context) error {
	roleIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "role", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, roleIndexModel); err != nil {
		return fmt.Errorf("cannot create role index: %w", err)
	}
	return nil
}

func (r *StaffRepo) Create(ctx context.Context, member *staff.Member) error {
	_, err := r.collection().InsertOne(ctx, member)
	if err != nil {
		return fmt.Errorf("cannot insert staff member: %w", err)
	}
	return nil
}

func (r *StaffRepo) Get(ctx context.Context, id uuid.UUID) (*staff.Member, error) {
	var member staff.Member
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find staff member: %w", err)
	}
	return &member, nil
}

func (r *StaffRepo) List(ctx context.Context) ([]*staff.Member, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find staff members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*staff.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("cannot decode staff members: %w", err)
	}

	return members, nil
}

func (r *StaffRepo) Save(ctx context.Context, member *staff.Member) error {
	filter := bson.M{"_id": member.ID}
	update := bson.M{"$set": member}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update staff member: %w", err)
	}

	if result.MatchedCount == 0 {
		return staff.ErrNotFound
	}

	return nil
}

func (r *StaffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete staff member: %w", err)
	}

	if result.DeletedCount == 0 {
		return staff.ErrNotFound
	}

	return nil
}
