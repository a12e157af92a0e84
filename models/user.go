// Package models, uygulamanın domain modellerini tanımlar.
//
// Her model MongoDB'deki bir koleksiyonun Go karşılığıdır.
// bson tag'leri dökümanların nasıl map'leneceğini, json tag'leri
// API/WebSocket response'larının şeklini belirler.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User, bir kullanıcıyı temsil eder.
//
// Bu servis kullanıcı kaydı/girişi yapmaz — users koleksiyonunu sadece
// okur ve presence alanlarını günceller. Preferences nil ise kullanıcı
// hiç tercih kaydetmemiş demektir (boş liste değil, "yok").
type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Nickname  string             `bson:"nickname" json:"nickname"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"-"` // API response'a dahil etme
	AvatarURL *string            `bson:"avatar_url" json:"avatar_url"`

	// Preferences, recommendation filtresinde kullanılan kategori tag'leri.
	Preferences []string `bson:"preferences,omitempty" json:"preferences,omitempty"`

	// Presence alanları — heartbeat bağlantısının yan etkisi olarak yazılır.
	// Okuyanlar staleness'ı normal karşılamalı: bağlantı kopması ile
	// is_online=false yazılması arasında bir gecikme penceresi vardır.
	IsOnline       bool       `bson:"is_online" json:"is_online"`
	LastTimeOnline *time.Time `bson:"last_time_online,omitempty" json:"last_time_online,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ToAuthor, kullanıcının denormalize author özetini döner.
func (u *User) ToAuthor() Author {
	return Author{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
