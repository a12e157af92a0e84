package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// PostRepository, post koleksiyonu erişim interface'i.
//
// ListByChannel en yeniden eskiye sıralar — "scroll_top" komutu bir
// sonraki (daha eski) sayfayı ister.
type PostRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListByChannel(ctx context.Context, channelID primitive.ObjectID, skip, limit int64) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int64) ([]models.Post, error)

	// LatestPerChannel, verilen kanalların her biri için en yeni postu döner.
	// Hiç postu olmayan kanallar map'te yer almaz.
	LatestPerChannel(ctx context.Context, channelIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Post, error)

	// CountByChannel ve CountNewerThan, unread hesabının iki yarısı:
	// imleç yoksa toplam sayı, varsa imlecin gösterdiği postun
	// created_at'inden kesinlikle daha yeni postların sayısı.
	CountByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error)
	CountNewerThan(ctx context.Context, channelID primitive.ObjectID, t time.Time) (int64, error)

	Update(ctx context.Context, post *models.Post) error
}
