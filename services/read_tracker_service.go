package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
)

// ReadTrackerService, okuma imleci iş mantığı.
//
// Unread hesabı bir join'dir: imleç → imlecin gösterdiği post →
// o postun created_at'inden kesinlikle daha yeni postlar, kanala scoped.
// ReadTracker yazıları ile post okumaları arasında transaction YOKTUR —
// yeni yazılmış bir postun sayıma henüz yansımadığı kısa bir pencere
// kabul edilir, telafi edilmez.
type ReadTrackerService interface {
	Get(ctx context.Context, userID, channelID primitive.ObjectID) (*models.ReadTracker, error)
	UpsertCursor(ctx context.Context, userID, channelID primitive.ObjectID, lastReadPostID primitive.ObjectID) error
	UnreadCount(ctx context.Context, userID, channelID primitive.ObjectID) (int64, error)

	// BulkUnreadCounts, kullanıcının linki olan her kanal için unread
	// sayısını döner. Sıfır unread'li kanallar map'te YER ALMAZ (sparse).
	BulkUnreadCounts(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]int64, error)

	// MarkRead, her post için o postun kanalındaki imleci postun id'sine
	// ilerletir — ama sadece İLERİYE: imleç asla daha eski bir posta
	// geri çekilmez (monotonicity).
	MarkRead(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) error
}

type readTrackerService struct {
	readTrackerRepo repository.ReadTrackerRepository
	postRepo        repository.PostRepository
	userChannelRepo repository.UserChannelRepository
}

// NewReadTrackerService, constructor — interface döner.
func NewReadTrackerService(
	readTrackerRepo repository.ReadTrackerRepository,
	postRepo repository.PostRepository,
	userChannelRepo repository.UserChannelRepository,
) ReadTrackerService {
	return &readTrackerService{
		readTrackerRepo: readTrackerRepo,
		postRepo:        postRepo,
		userChannelRepo: userChannelRepo,
	}
}

func (s *readTrackerService) Get(ctx context.Context, userID, channelID primitive.ObjectID) (*models.ReadTracker, error) {
	tracker, err := s.readTrackerRepo.Get(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	if tracker == nil {
		return nil, pkg.ErrNotFound
	}
	return tracker, nil
}

func (s *readTrackerService) UpsertCursor(ctx context.Context, userID, channelID primitive.ObjectID, lastReadPostID primitive.ObjectID) error {
	return s.readTrackerRepo.Upsert(ctx, userID, channelID, &lastReadPostID)
}

func (s *readTrackerService) UnreadCount(ctx context.Context, userID, channelID primitive.ObjectID) (int64, error) {
	tracker, err := s.readTrackerRepo.Get(ctx, userID, channelID)
	if err != nil {
		return 0, err
	}
	if tracker == nil || tracker.LastReadPostID == nil {
		// İmleç yok = hiçbir şey okunmadı = tüm postlar unread.
		return s.postRepo.CountByChannel(ctx, channelID)
	}

	ref, err := s.postRepo.GetByID(ctx, *tracker.LastReadPostID)
	if errors.Is(err, pkg.ErrNotFound) {
		// İmlecin gösterdiği post silinmiş — referans zamanı kayıp,
		// kanalın tamamı unread sayılır.
		return s.postRepo.CountByChannel(ctx, channelID)
	}
	if err != nil {
		return 0, err
	}

	return s.postRepo.CountNewerThan(ctx, channelID, ref.CreatedAt)
}

func (s *readTrackerService) BulkUnreadCounts(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	links, err := s.userChannelRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := make(map[primitive.ObjectID]int64)
	for _, link := range links {
		count, err := s.UnreadCount(ctx, userID, link.ChannelID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			counts[link.ChannelID] = count
		}
	}
	return counts, nil
}

func (s *readTrackerService) MarkRead(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) error {
	for _, postID := range postIDs {
		post, err := s.postRepo.GetByID(ctx, postID)
		if errors.Is(err, pkg.ErrNotFound) {
			// Post bu arada silinmiş olabilir — işaretlenecek bir şey yok.
			continue
		}
		if err != nil {
			return err
		}

		advance, err := s.advancesCursor(ctx, userID, post)
		if err != nil {
			return err
		}
		if !advance {
			continue
		}

		if err := s.readTrackerRepo.Upsert(ctx, userID, post.ChannelID, &post.ID); err != nil {
			return err
		}
	}
	return nil
}

// advancesCursor, postun mevcut imleçten daha yeni olup olmadığını döner.
// İmleç yoksa veya imlecin gösterdiği post silinmişse her post ilerletir.
func (s *readTrackerService) advancesCursor(ctx context.Context, userID primitive.ObjectID, post *models.Post) (bool, error) {
	tracker, err := s.readTrackerRepo.Get(ctx, userID, post.ChannelID)
	if err != nil {
		return false, err
	}
	if tracker == nil || tracker.LastReadPostID == nil {
		return true, nil
	}

	current, err := s.postRepo.GetByID(ctx, *tracker.LastReadPostID)
	if errors.Is(err, pkg.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return post.CreatedAt.After(current.CreatedAt), nil
}
