package bookingRepo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (repo *MongoBookingRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Overlap and calendar queries scan by provider and interval.
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "provider_type", Value: 1},
				{Key: "start", Value: 1},
			},
		},
		{
			// Expiry sweep scans pending bookings by age.
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("warning: failed to ensure booking indexes: %v", err)
	}
}
