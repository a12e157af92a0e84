package services

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
)

// RankingService, kanal trend skorlama ve içerik önerme iş mantığı.
//
// Skor her zaman two_week bucket ailesinden hesaplanır — tek bir sayaç
// ailesi kullanmak, farklı çağrıların tutarsız sıralamalar üretmesini
// engeller.
type RankingService interface {
	// Recommend, kullanıcının tercihlerine göre filtrelenmiş, okuma
	// imlecine göre elenmiş, trend skoruna göre sıralanmış kanal sayfası
	// döner. Kullanıcının hiç tercihi yoksa pkg.ErrNoPreferences döner —
	// "hiçbir şey eşleşmedi" ile karışmasın diye boş liste DEĞİL.
	Recommend(ctx context.Context, userID primitive.ObjectID, p pkg.Pagination) ([]models.ChannelWithLatestPost, error)

	// Trending, tercih ve okuma filtresi olmadan aynı skorlama ve
	// sayfalamayı uygular.
	Trending(ctx context.Context, p pkg.Pagination) ([]models.Channel, error)
}

type rankingService struct {
	channelRepo     repository.ChannelRepository
	postRepo        repository.PostRepository
	readTrackerRepo repository.ReadTrackerRepository
	userRepo        repository.UserRepository
}

// NewRankingService, constructor — interface döner.
func NewRankingService(
	channelRepo repository.ChannelRepository,
	postRepo repository.PostRepository,
	readTrackerRepo repository.ReadTrackerRepository,
	userRepo repository.UserRepository,
) RankingService {
	return &rankingService{
		channelRepo:     channelRepo,
		postRepo:        postRepo,
		readTrackerRepo: readTrackerRepo,
		userRepo:        userRepo,
	}
}

// TrendScore, zaman bucket'lı sayaç dizisinden yüzde büyüme skoru üretir.
//
// Dizinin son iki elemanı [.., prev, latest] için:
//
//	score = (latest - prev) / prev * 100   (prev > 0 ise)
//	score = 0                              (prev == 0 veya eleman < 2 ise)
//
// prev == 0 durumu matematik hatası değil, policy'dir: sıfır tabandan
// büyüme "sonsuz" yerine "büyüme yok" sayılır.
func TrendScore(buckets []int64) float64 {
	n := len(buckets)
	if n < 2 {
		return 0
	}

	prev := buckets[n-2]
	latest := buckets[n-1]
	if prev == 0 {
		return 0
	}

	return float64(latest-prev) / float64(prev) * 100
}

// scoredChannel, sıralama sırasında kanalı skoruyla birlikte taşır.
type scoredChannel struct {
	channel models.Channel
	score   float64
}

func (s *rankingService) Recommend(ctx context.Context, userID primitive.ObjectID, p pkg.Pagination) ([]models.ChannelWithLatestPost, error) {
	preferences, err := s.userRepo.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(preferences) == 0 {
		// Fail closed: tercih yoksa öneri havuzu tanımsızdır.
		return nil, pkg.ErrNoPreferences
	}

	channels, err := s.channelRepo.ListByCategories(ctx, preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate channels: %w", err)
	}

	channelIDs := make([]primitive.ObjectID, 0, len(channels))
	for _, ch := range channels {
		channelIDs = append(channelIDs, ch.ID)
	}

	latest, err := s.postRepo.LatestPerChannel(ctx, channelIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest posts: %w", err)
	}

	scored := make([]scoredChannel, 0, len(channels))
	for _, ch := range channels {
		latestPost, hasPost := latest[ch.ID]
		if !hasPost {
			// Postu olmayan kanal öneri sayfasına girmez —
			// null latest_post ile dönmek yerine tamamen elenir.
			continue
		}

		tracker, err := s.readTrackerRepo.Get(ctx, userID, ch.ID)
		if err != nil {
			return nil, err
		}
		if tracker != nil && tracker.LastReadPostID != nil && *tracker.LastReadPostID == latestPost.ID {
			// Kullanıcı kanalın son postunu zaten görmüş — tekrar önerme.
			continue
		}

		scored = append(scored, scoredChannel{channel: ch, score: TrendScore(ch.Followers.TwoWeek)})
	}

	page := paginateScored(scored, p)

	result := make([]models.ChannelWithLatestPost, 0, len(page))
	for _, sc := range page {
		result = append(result, models.ChannelWithLatestPost{
			Channel:    sc.channel,
			LatestPost: latest[sc.channel.ID],
		})
	}
	return result, nil
}

func (s *rankingService) Trending(ctx context.Context, p pkg.Pagination) ([]models.Channel, error) {
	channels, err := s.channelRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load channels: %w", err)
	}

	scored := make([]scoredChannel, 0, len(channels))
	for _, ch := range channels {
		scored = append(scored, scoredChannel{channel: ch, score: TrendScore(ch.Followers.TwoWeek)})
	}

	page := paginateScored(scored, p)

	result := make([]models.Channel, 0, len(page))
	for _, sc := range page {
		result = append(result, sc.channel)
	}
	return result, nil
}

// paginateScored, skora göre azalan sıralar ve istenen sayfayı keser.
//
// Eşit skorlar kanal id'sine göre kırılır — keyfi ama DETERMİNİSTİK.
// Sıralama her çağrıda aynı olmazsa ardışık sayfalar aynı kanalı iki kez
// gösterebilir veya hiç göstermeyebilir; sayfalama kararlılığı buna bağlı.
func paginateScored(scored []scoredChannel, p pkg.Pagination) []scoredChannel {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].channel.ID.Hex() < scored[j].channel.ID.Hex()
	})

	skip := p.Skip()
	if skip >= int64(len(scored)) {
		return nil
	}

	end := skip + p.Limit
	if end > int64(len(scored)) {
		end = int64(len(scored))
	}
	return scored[skip:end]
}
