package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
)

// mongoChannelRepo, ChannelRepository'nin MongoDB implementasyonu.
type mongoChannelRepo struct {
	coll *mongo.Collection
}

// NewMongoChannelRepo, constructor — interface döner.
func NewMongoChannelRepo(coll *mongo.Collection) ChannelRepository {
	return &mongoChannelRepo{coll: coll}
}

func (r *mongoChannelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Channel, error) {
	var channel models.Channel
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&channel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: channel %s", pkg.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	return &channel, nil
}

func (r *mongoChannelRepo) ListAll(ctx context.Context) ([]models.Channel, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoChannelRepo) ListByCategories(ctx context.Context, categories []string) ([]models.Channel, error) {
	return r.list(ctx, bson.M{"categories": bson.M{"$in": categories}})
}

func (r *mongoChannelRepo) list(ctx context.Context, filter bson.M) ([]models.Channel, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer cursor.Close(ctx)

	var channels []models.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return channels, nil
}

func (r *mongoChannelRepo) IncrementFollowers(ctx context.Context, id primitive.ObjectID, delta int64) error {
	update := bson.M{"$inc": bson.M{"followers.current": delta}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update follower count: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: channel %s", pkg.ErrNotFound, id.Hex())
	}
	return nil
}
