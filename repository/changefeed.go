// Package repository, MongoDB üzerindeki veri erişim katmanını barındırır.
//
// Her concern için bir interface dosyası + bir mongo_* implementasyon
// dosyası vardır. Service ve ws katmanları sadece interface'lere bağımlıdır —
// testlerde fake implementasyonlar kullanılır.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChangeOp, bir change notification'ın operasyon türü.
type ChangeOp string

const (
	ChangeOpInsert ChangeOp = "insert"
	ChangeOpUpdate ChangeOp = "update"
	ChangeOpDelete ChangeOp = "delete"
)

// ErrFeedClosed, feed'in store tarafından kapatıldığını belirtir.
// Feed restart edilemez — tüketici yeni bir handle açmalıdır.
var ErrFeedClosed = errors.New("change feed closed")

// ChangeNotification, tek bir change feed bildirimi.
//
// Persist edilmez; ömrü bir feed teslimatı kadardır. FullDocument sadece
// insert ve update'lerde (UpdateLookup sayesinde) dolu gelir — delete'te
// elimizde yalnızca silinen dökümanın id'si vardır.
//
// Tüketiciler bu payload'a güvenmek yerine storage'dan yeniden okumalıdır:
// authorization ve ranking, feed'in tek başına veremeyeceği join'li,
// policy'den geçmiş view'lar gerektirir. Feed bir "bir şey değişti, git
// tekrar bak" sinyalidir.
type ChangeNotification struct {
	Op           ChangeOp
	DocumentID   primitive.ObjectID
	FullDocument bson.Raw
	Collection   string
}

// ChangeFeed, tek bir change stream handle'ı.
//
// Next bloklar; sıradaki bildirimi, stream kapanınca ErrFeedClosed'u,
// stream hatasında altta yatan hatayı döner. Hata veya kapanış sonrası
// handle ölüdür — aynı handle ile devam edilemez.
type ChangeFeed interface {
	Next(ctx context.Context) (*ChangeNotification, error)
	Close(ctx context.Context) error
}

// ChangeFeedWatcher, bir koleksiyon üzerinde filtreli change feed açar.
//
// filter, bildirim alanları üzerinde server-side $match pipeline'ıdır
// (ör. sadece belirli bir channel_id'ye dokunan bildirimler). Bu filtre
// best-effort'tur: delete event'lerinde fullDocument olmadığı için bazı
// bildirimler filtreyi beklenmedik şekilde geçebilir veya elenebilir.
// Tüketiciler görünürlüğü her bildirimde AccessPolicy ile yeniden
// doğrulamak ZORUNDADIR.
type ChangeFeedWatcher interface {
	Watch(ctx context.Context, filter mongo.Pipeline) (ChangeFeed, error)
}

// changeEvent, Mongo change stream dökümanının çözümlediğimiz kısmı.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.Raw `bson:"fullDocument"`
	NS           struct {
		Collection string `bson:"coll"`
	} `bson:"ns"`
}
