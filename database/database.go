// Package database, MongoDB bağlantısını ve koleksiyon handle'larını yönetir.
//
// MongoDB'nin Go driver'ındaki mongo.Client thread-safe bir connection
// pool'dur — tüm repository'ler aynı client'ı paylaşır.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/akinalp/merume/config"
)

// DB, uygulamanın kullandığı koleksiyon handle'larını bir arada tutar.
type DB struct {
	client *mongo.Client

	Users        *mongo.Collection
	Channels     *mongo.Collection
	UserChannels *mongo.Collection
	Posts        *mongo.Collection
	ReadTrackers *mongo.Collection
}

// New, MongoDB'ye bağlanır ve koleksiyon handle'larını hazırlar.
//
// Change stream tüketen koleksiyonlar (posts, channels, user_channels)
// pre/post image desteğiyle oluşturulur — delete event'lerinde silinen
// dökümanın alanlarına server-side filtre uygulayabilmek için
// (fullDocumentBeforeChange sadece preimage saklanıyorsa dolu gelir).
func New(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.ConnectionTimeout) * time.Second).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)

	for _, name := range []string{cfg.PostsCollection, cfg.ChannelsCollection, cfg.UserChannelsCollection} {
		if err := ensureWatchableCollection(ctx, db, name); err != nil {
			return nil, err
		}
	}

	d := &DB{
		client:       client,
		Users:        db.Collection(cfg.UsersCollection),
		Channels:     db.Collection(cfg.ChannelsCollection),
		UserChannels: db.Collection(cfg.UserChannelsCollection),
		Posts:        db.Collection(cfg.PostsCollection),
		ReadTrackers: db.Collection(cfg.ReadTrackersCollection),
	}

	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// ensureWatchableCollection, koleksiyonu change stream pre/post image
// desteğiyle oluşturur. Koleksiyon zaten varsa NamespaceExists hatası
// döner — bu durumda sessizce devam ederiz.
func ensureWatchableCollection(ctx context.Context, db *mongo.Database, name string) error {
	opts := options.CreateCollection().
		SetChangeStreamPreAndPostImages(bson.M{"enabled": true})

	err := db.CreateCollection(ctx, name, opts)
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
		return nil
	}
	return fmt.Errorf("failed to create collection %q: %w", name, err)
}

// ensureIndexes, invariant'ları taşıyan unique index'leri kurar.
//
// (user_id, channel_id) çiftleri hem user_channels hem read_trackers
// için unique'tir — concurrent upsert yarışlarında duplicate satır
// oluşmasını storage seviyesinde engeller.
func (d *DB) ensureIndexes(ctx context.Context) error {
	pairIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "channel_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := d.UserChannels.Indexes().CreateOne(ctx, pairIndex); err != nil {
		return fmt.Errorf("failed to create user_channels index: %w", err)
	}
	if _, err := d.ReadTrackers.Indexes().CreateOne(ctx, pairIndex); err != nil {
		return fmt.Errorf("failed to create read_trackers index: %w", err)
	}

	postIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := d.Posts.Indexes().CreateOne(ctx, postIndex); err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}

	return nil
}

// Close, bağlantı pool'unu kapatır.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
