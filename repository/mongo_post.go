package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
)

// mongoPostRepo, PostRepository'nin MongoDB implementasyonu.
type mongoPostRepo struct {
	coll *mongo.Collection
}

// NewMongoPostRepo, constructor — interface döner.
func NewMongoPostRepo(coll *mongo.Collection) PostRepository {
	return &mongoPostRepo{coll: coll}
}

func (r *mongoPostRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: post %s", pkg.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return &post, nil
}

func (r *mongoPostRepo) ListByChannel(ctx context.Context, channelID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

func (r *mongoPostRepo) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"author.id": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// LatestPerChannel, aggregation ile her kanalın en yeni postunu bulur:
// kanala göre filtrele → created_at desc sırala → kanal başına ilk döküman.
func (r *mongoPostRepo) LatestPerChannel(ctx context.Context, channelIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Post, error) {
	if len(channelIDs) == 0 {
		return map[primitive.ObjectID]models.Post{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"channel_id": bson.M{"$in": channelIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$channel_id",
			"latest": bson.M{"$first": "$$ROOT"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate latest posts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ChannelID primitive.ObjectID `bson:"_id"`
		Latest    models.Post        `bson:"latest"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode latest posts: %w", err)
	}

	latest := make(map[primitive.ObjectID]models.Post, len(rows))
	for _, row := range rows {
		latest[row.ChannelID] = row.Latest
	}
	return latest, nil
}

func (r *mongoPostRepo) CountByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *mongoPostRepo) CountNewerThan(ctx context.Context, channelID primitive.ObjectID, t time.Time) (int64, error) {
	filter := bson.M{
		"channel_id": channelID,
		"created_at": bson.M{"$gt": t},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count newer posts: %w", err)
	}
	return count, nil
}

func (r *mongoPostRepo) Update(ctx context.Context, post *models.Post) error {
	update := bson.M{"$set": bson.M{
		"body":       post.Body,
		"images":     post.Images,
		"edit_state": post.EditState,
		"updated_at": post.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: post %s", pkg.ErrNotFound, post.ID.Hex())
	}
	return nil
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]models.Post, error) {
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}
