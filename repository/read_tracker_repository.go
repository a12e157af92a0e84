package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// ReadTrackerRepository, okuma imleci erişim interface'i.
type ReadTrackerRepository interface {
	// Get, (user, channel) çiftinin imlecini döner.
	// İmleç yoksa (nil, nil) döner — "hiçbir şey okunmadı" demektir.
	Get(ctx context.Context, userID, channelID primitive.ObjectID) (*models.ReadTracker, error)

	// Upsert, imleci atomik olarak günceller; yoksa oluşturur.
	// Aynı çift için concurrent çağrılar duplicate satır ÜRETMEMELİDİR.
	Upsert(ctx context.Context, userID, channelID primitive.ObjectID, lastReadPostID *primitive.ObjectID) error
}
