package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ReadTracker, kullanıcının bir kanaldaki okuma imleci.
//
// Watermark pattern: her postu tek tek "okundu" işaretlemek yerine
// "bu posta kadar okudum" bilgisini tutarız. Okunmamış post sayısı =
// imlecin gösterdiği posttan daha yeni postların sayısı.
//
// Invariant: (user_id, channel_id) başına en fazla bir döküman.
// Döküman yoksa "hiçbir şey okunmadı" demektir — tüm postlar okunmamış.
// LastReadPostID nil olabilir: tracker açılmış ama henüz post okunmamış.
type ReadTracker struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ChannelID      primitive.ObjectID  `bson:"channel_id" json:"channel_id"`
	LastReadPostID *primitive.ObjectID `bson:"last_read_post_id,omitempty" json:"last_read_post_id,omitempty"`
}

// UnreadInfo, bir kanalın okunmamış post sayısını taşır.
// Sıfır okunmamışı olan kanallar sonuçtan tamamen çıkarılır (sparse).
type UnreadInfo struct {
	ChannelID   primitive.ObjectID `json:"channel_id"`
	UnreadCount int64              `json:"unread_count"`
}

// UpdateReadTrackerRequest, imleci elle ilerletme isteği.
// last_read_post_id hex string olarak gelir; boş bırakılırsa imleç
// "hiç okunmadı" durumuna çekilmez — alan zorunludur.
type UpdateReadTrackerRequest struct {
	LastReadPostID string `json:"last_read_post_id" validate:"required,len=24,hexadecimal"`
}
