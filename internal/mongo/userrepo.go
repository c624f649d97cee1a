package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/internal/auth"
)

type UserRepo struct {
	conn   *Conn
	logger aqm.Logger
}

func NewUserRepo(conn *Conn, logger aqm.Logger) *UserRepo {
	return &UserRepo{
		conn:   conn,
		logger: logger,
	}
}

func (r *UserRepo) collection() *mongo.Collection {
	return r.conn.Database().Collection("users")
}

func (r *UserRepo) Database() *mongo.Database {
	return r.conn.Database()
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	emailIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, emailIndexModel); err != nil {
		return fmt.Errorf("cannot create email index: %w", err)
	}
	return nil
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	_, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("cannot insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("cannot find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Save(ctx context.Context, user *auth.User) error {
	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": user}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update user: %w", err)
	}

	if result.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}
