package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/repository"
)

// PresenceService, kullanıcının online/offline durumunu günceller.
//
// Durum heartbeat bağlantısının ömrüne bağlıdır: bağlantı açılınca online,
// kapanınca offline + last_time_online. Son yazan kazanır — aynı kullanıcının
// iki heartbeat bağlantısı arasında uzlaşma yapılmaz.
type PresenceService interface {
	MarkOnline(ctx context.Context, userID primitive.ObjectID) error
	MarkOffline(ctx context.Context, userID primitive.ObjectID) error
}

type presenceService struct {
	userRepo repository.UserRepository
}

// NewPresenceService, constructor — interface döner.
func NewPresenceService(userRepo repository.UserRepository) PresenceService {
	return &presenceService{userRepo: userRepo}
}

func (s *presenceService) MarkOnline(ctx context.Context, userID primitive.ObjectID) error {
	return s.userRepo.SetOnline(ctx, userID)
}

func (s *presenceService) MarkOffline(ctx context.Context, userID primitive.ObjectID) error {
	return s.userRepo.SetOffline(ctx, userID)
}
