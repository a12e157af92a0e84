package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// UserRepository, users koleksiyonunun bu servis tarafından kullanılan
// yüzeyi: profil okuma, tercih okuma ve presence yazma.
// Kayıt/giriş akışı identity collaborator'a aittir.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// Preferences, kullanıcının kategori tercihlerini döner.
	// Hiç tercih kaydedilmemişse nil döner — boş liste ile karıştırma.
	Preferences(ctx context.Context, id primitive.ObjectID) ([]string, error)

	// SetOnline / SetOffline, presence alanlarını günceller.
	// Bağlantı yaşam döngüsüne bağlı yan etkidir — connect'te online,
	// disconnect'te offline.
	SetOnline(ctx context.Context, id primitive.ObjectID) error
	SetOffline(ctx context.Context, id primitive.ObjectID) error
}
