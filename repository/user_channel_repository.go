package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// UserChannelRepository, kullanıcı-kanal linkleri erişim interface'i.
type UserChannelRepository interface {
	// GetLink, (user, channel) çiftinin linkini döner.
	// Link yoksa (nil, nil) döner — yokluk bir hata değil, normal durumdur
	// (AccessPolicy "abone değil" olarak yorumlar).
	GetLink(ctx context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error)

	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserChannel, error)

	// Insert, yeni link ekler. (user, channel) unique index'ine takılırsa
	// pkg.ErrConflict döner — duplicate abonelik.
	Insert(ctx context.Context, link *models.UserChannel) error

	Delete(ctx context.Context, userID, channelID primitive.ObjectID) error
}
