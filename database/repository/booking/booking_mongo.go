package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"inkwell/config"
	"inkwell/database"
	"inkwell/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo is the MongoDB-backed booking repository.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection
// and ensures its indexes.
func NewMongoBookingRepo() *MongoBookingRepo {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if _, err := repo.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, key models.SlotKey, statuses []models.BookingStatus) ([]models.Booking, error) {
	// Half-open interval overlap: existing.start < key.end && existing.end > key.start.
	filter := bson.M{
		"provider_id":   key.ProviderID,
		"provider_type": key.ProviderType,
		"status":        bson.M{"$in": statuses},
		"start":         bson.M{"$lt": key.End},
		"end":           bson.M{"$gt": key.Start},
	}
	return repo.find(ctx, filter, nil)
}

func (repo *MongoBookingRepo) ConfirmIfPending(ctx context.Context, id, paymentRef string, at time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": models.StatusReservationPending}
	update := bson.M{"$set": bson.M{
		"status":      models.StatusConfirmed,
		"payment_ref": paymentRef,
		"updated_at":  at,
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoBookingRepo) CancelIf(ctx context.Context, id string, from []models.BookingStatus, reason, actor string, at time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"reason":       reason,
		"cancelled_by": actor,
		"updated_at":   at,
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoBookingRepo) CompleteIfConfirmed(ctx context.Context, id, notes string, at time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": models.StatusConfirmed}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusCompleted,
		"notes":      notes,
		"updated_at": at,
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to complete booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoBookingRepo) FindExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":     models.StatusReservationPending,
		"created_at": bson.M{"$lt": cutoff},
	}
	return repo.find(ctx, filter, nil)
}

func (repo *MongoBookingRepo) ListForProvider(ctx context.Context, providerID string, providerType models.ProviderType, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"provider_id":   providerID,
		"provider_type": providerType,
		"start":         bson.M{"$lt": to},
		"end":           bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	return repo.find(ctx, filter, opts)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = repo.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = repo.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("booking query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
