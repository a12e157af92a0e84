// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini constructor
// injection ile alır.
package main

import (
	"github.com/akinalp/merume/config"
	"github.com/akinalp/merume/services"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth         services.AuthService
	Ranking      services.RankingService
	ReadTracker  services.ReadTrackerService
	Post         services.PostService
	Subscription services.SubscriptionService
	Presence     services.PresenceService
}

// initServices, tüm service'leri oluşturur.
func initServices(repos *Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:         services.NewAuthService(cfg.JWT.Secret),
		Ranking:      services.NewRankingService(repos.Channel, repos.Post, repos.ReadTracker, repos.User),
		ReadTracker:  services.NewReadTrackerService(repos.ReadTracker, repos.Post, repos.UserChannel),
		Post:         services.NewPostService(repos.Post),
		Subscription: services.NewSubscriptionService(repos.Channel, repos.UserChannel),
		Presence:     services.NewPresenceService(repos.User),
	}
}
