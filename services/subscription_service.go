package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
)

// SubscriptionService, kanal abonelik yaşam döngüsünü yönetir.
//
// Subscribe/Unsubscribe, followers.current sayacını da günceller —
// ranking'in okuduğu bucket dizilerini DEĞİL (onları periyodik job besler).
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error)
	Unsubscribe(ctx context.Context, userID, channelID primitive.ObjectID) error
}

type subscriptionService struct {
	channelRepo     repository.ChannelRepository
	userChannelRepo repository.UserChannelRepository
}

// NewSubscriptionService, constructor — interface döner.
func NewSubscriptionService(
	channelRepo repository.ChannelRepository,
	userChannelRepo repository.UserChannelRepository,
) SubscriptionService {
	return &subscriptionService{
		channelRepo:     channelRepo,
		userChannelRepo: userChannelRepo,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error) {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if channel.Author.ID == userID {
		return nil, fmt.Errorf("%w: channel owner cannot subscribe to own channel", pkg.ErrConflict)
	}

	// Private kanala dışarıdan abone olunamaz — davet/contributor akışı
	// bu servisin dışında. Mevcut link CanViewChannel'a verilmez: abonelik
	// talebi değerlendirilirken kullanıcı henüz abone değildir.
	if channel.Visibility == models.VisibilityPrivate && !CanViewChannel(userID, channel, nil) {
		return nil, fmt.Errorf("%w: channel is private", pkg.ErrForbidden)
	}

	now := time.Now().UTC()
	link := &models.UserChannel{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		ChannelID:    channelID,
		IsOwner:      false,
		SubscribedAt: &now,
		CreatedAt:    now,
	}

	// Duplicate abonelik unique index'e takılır — repo ErrConflict döner.
	if err := s.userChannelRepo.Insert(ctx, link); err != nil {
		return nil, err
	}

	if err := s.channelRepo.IncrementFollowers(ctx, channelID, 1); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, channelID primitive.ObjectID) error {
	link, err := s.userChannelRepo.GetLink(ctx, userID, channelID)
	if err != nil {
		return err
	}
	if link == nil {
		return fmt.Errorf("%w: subscription", pkg.ErrNotFound)
	}
	if link.IsOwner {
		return fmt.Errorf("%w: owner link cannot be removed by unsubscribe", pkg.ErrForbidden)
	}

	if err := s.userChannelRepo.Delete(ctx, userID, channelID); err != nil {
		return err
	}

	return s.channelRepo.IncrementFollowers(ctx, channelID, -1)
}
