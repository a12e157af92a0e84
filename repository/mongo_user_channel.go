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

// mongoUserChannelRepo, UserChannelRepository'nin MongoDB implementasyonu.
type mongoUserChannelRepo struct {
	coll *mongo.Collection
}

// NewMongoUserChannelRepo, constructor — interface döner.
func NewMongoUserChannelRepo(coll *mongo.Collection) UserChannelRepository {
	return &mongoUserChannelRepo{coll: coll}
}

func (r *mongoUserChannelRepo) GetLink(ctx context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error) {
	var link models.UserChannel
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "channel_id": channelID}).Decode(&link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user channel link: %w", err)
	}
	return &link, nil
}

func (r *mongoUserChannelRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserChannel, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list user channel links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []models.UserChannel
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode user channel links: %w", err)
	}
	if links == nil {
		links = []models.UserChannel{}
	}
	return links, nil
}

func (r *mongoUserChannelRepo) Insert(ctx context.Context, link *models.UserChannel) error {
	_, err := r.coll.InsertOne(ctx, link)
	if mongo.IsDuplicateKeyError(err) {
		// Unique (user_id, channel_id) index'i — aynı çift için ikinci link.
		return fmt.Errorf("%w: user already linked to channel", pkg.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user channel link: %w", err)
	}
	return nil
}

func (r *mongoUserChannelRepo) Delete(ctx context.Context, userID, channelID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "channel_id": channelID})
	if err != nil {
		return fmt.Errorf("failed to delete user channel link: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: user channel link", pkg.ErrNotFound)
	}
	return nil
}
