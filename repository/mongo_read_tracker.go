package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akinalp/merume/models"
)

// mongoReadTrackerRepo, ReadTrackerRepository'nin MongoDB implementasyonu.
type mongoReadTrackerRepo struct {
	coll *mongo.Collection
}

// NewMongoReadTrackerRepo, constructor — interface döner.
func NewMongoReadTrackerRepo(coll *mongo.Collection) ReadTrackerRepository {
	return &mongoReadTrackerRepo{coll: coll}
}

func (r *mongoReadTrackerRepo) Get(ctx context.Context, userID, channelID primitive.ObjectID) (*models.ReadTracker, error) {
	var tracker models.ReadTracker
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "channel_id": channelID}).Decode(&tracker)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find read tracker: %w", err)
	}
	return &tracker, nil
}

// Upsert, tek bir atomik FindOneAndUpdate ile "varsa güncelle, yoksa
// oluştur" yapar — ayrı find+insert adımlarının yarış penceresi yoktur.
//
// Yine de iki upsert aynı anda insert tarafına düşebilir; unique
// (user_id, channel_id) index'i ikincisini duplicate-key ile düşürür.
// Bu "başkası az önce oluşturdu" demektir — update olarak tekrar denenir,
// hata olarak YÜZEYE ÇIKMAZ.
func (r *mongoReadTrackerRepo) Upsert(ctx context.Context, userID, channelID primitive.ObjectID, lastReadPostID *primitive.ObjectID) error {
	filter := bson.M{"user_id": userID, "channel_id": channelID}
	update := bson.M{
		"$set":         bson.M{"last_read_post_id": lastReadPostID},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true)

	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		// ReturnDocument istemedik — yeni insert'te boş sonuç normaldir.
		err = nil
	}
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"last_read_post_id": lastReadPostID}})
	}
	if err != nil {
		return fmt.Errorf("failed to upsert read tracker: %w", err)
	}
	return nil
}
