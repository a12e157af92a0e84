package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
)

// mongoUserRepo, UserRepository'nin MongoDB implementasyonu.
type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo, constructor — interface döner.
func NewMongoUserRepo(coll *mongo.Collection) UserRepository {
	return &mongoUserRepo{coll: coll}
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", pkg.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepo) Preferences(ctx context.Context, id primitive.ObjectID) ([]string, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Preferences, nil
}

func (r *mongoUserRepo) SetOnline(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"is_online":        true,
		"last_time_online": now,
	}}
	return r.setPresence(ctx, id, update)
}

func (r *mongoUserRepo) SetOffline(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"is_online": false}}
	return r.setPresence(ctx, id, update)
}

func (r *mongoUserRepo) setPresence(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", pkg.ErrNotFound, id.Hex())
	}
	return nil
}
