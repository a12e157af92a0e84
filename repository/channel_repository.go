package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// ChannelRepository, kanal koleksiyonu erişim interface'i.
//
// Kanal CRUD'u bu servisin kapsamı dışında — buradaki metodlar yalnızca
// sync/ranking çekirdeğinin ihtiyaç duyduğu okumalar ve subscribe
// akışının güncellediği takipçi sayacıdır.
type ChannelRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Channel, error)
	ListAll(ctx context.Context) ([]models.Channel, error)
	ListByCategories(ctx context.Context, categories []string) ([]models.Channel, error)

	// IncrementFollowers, followers.current sayacını delta kadar değiştirir
	// (subscribe +1, unsubscribe -1). Bucket dizilerine DOKUNMAZ — onlara
	// örnek ekleyen periyodik job ayrı bir sistemdir.
	IncrementFollowers(ctx context.Context, id primitive.ObjectID, delta int64) error
}
