// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository bir *mongo.Collection alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"github.com/akinalp/merume/config"
	"github.com/akinalp/merume/database"
	"github.com/akinalp/merume/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı değişkenler yerine tek struct kullanmak:
// 1. Fonksiyon imzalarını temiz tutar (tek parametre yerine N parametre)
// 2. Yeni repository eklendiğinde sadece struct + initRepositories güncellenir
// 3. IDE auto-complete ile kolay erişim (repos.User, repos.Channel, vb.)
//
// Watcher'lar da burada — her biri bir koleksiyonun change stream'ini açar.
type Repositories struct {
	User        repository.UserRepository
	Channel     repository.ChannelRepository
	UserChannel repository.UserChannelRepository
	Post        repository.PostRepository
	ReadTracker repository.ReadTrackerRepository

	PostsWatcher        repository.ChangeFeedWatcher
	ChannelsWatcher     repository.ChangeFeedWatcher
	UserChannelsWatcher repository.ChangeFeedWatcher
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Her NewMongo* fonksiyonu kendi koleksiyonunu alır — mongo.Collection
// thread-safe'dir, paylaşılması güvenlidir.
func initRepositories(db *database.DB, cfg *config.Config) *Repositories {
	return &Repositories{
		User:        repository.NewMongoUserRepo(db.Users),
		Channel:     repository.NewMongoChannelRepo(db.Channels),
		UserChannel: repository.NewMongoUserChannelRepo(db.UserChannels),
		Post:        repository.NewMongoPostRepo(db.Posts),
		ReadTracker: repository.NewMongoReadTrackerRepo(db.ReadTrackers),

		PostsWatcher:        repository.NewMongoChangeFeedWatcher(db.Posts, cfg.Mongo.PostsCollection),
		ChannelsWatcher:     repository.NewMongoChangeFeedWatcher(db.Channels, cfg.Mongo.ChannelsCollection),
		UserChannelsWatcher: repository.NewMongoChangeFeedWatcher(db.UserChannels, cfg.Mongo.UserChannelsCollection),
	}
}
