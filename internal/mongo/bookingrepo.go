package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meetupclub/meetup/internal/bookings"
)

type BookingRepo struct {
	conn   *Conn
	logger aqm.Logger
}

func NewBookingRepo(conn *Conn, logger aqm.Logger) *BookingRepo {
	return &BookingRepo{
		conn:   conn,
		logger: logger,
	}
}

func (r *BookingRepo) collection() *mongo.Collection {
	return r.conn.Database().Collection("bookings")
}

func (r *BookingRepo) EnsureIndexes(ctx context.Context) error {
	statusIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, statusIndexModel); err != nil {
		return fmt.Errorf("cannot create status index: %w", err)
	}

	dateIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "booking_date", Value: 1}, {Key: "booking_time", Value: 1}},
	}
	if _, err := r.collection().Indexes().CreateOne(ctx, dateIndexModel); err != nil {
		return fmt.Errorf("cannot create booking_date index: %w", err)
	}

	return nil
}

func (r *BookingRepo) Create(ctx context.Context, booking *bookings.Booking) error {
	_, err := r.collection().InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("cannot insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	var booking bookings.Booking
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find booking: %w", err)
	}
	return &booking, nil
}

func (r *BookingRepo) List(ctx context.Context) ([]*bookings.Booking, error) {
	return r.list(ctx, bson.M{})
}

func (r *BookingRepo) ListByStatus(ctx context.Context, status string) ([]*bookings.Booking, error) {
	return r.list(ctx, bson.M{"status": status})
}

func (r *BookingRepo) list(ctx context.Context, query bson.M) ([]*bookings.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "booking_date", Value: 1}, {Key: "booking_time", Value: 1}})

	cursor, err := r.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var list []*bookings.Booking
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("cannot decode bookings: %w", err)
	}

	return list, nil
}

func (r *BookingRepo) Save(ctx context.Context, booking *bookings.Booking) error {
	filter := bson.M{"_id": booking.ID}
	update := bson.M{"$set": booking}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookings.ErrNotFound
	}

	return nil
}
