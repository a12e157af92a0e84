package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility, kanalın kimler tarafından görülebileceğini belirler.
// Go'da enum yoktur — typed constant kullanılır.
type Visibility string

const (
	VisibilityPublic  Visibility = "Public"
	VisibilityPrivate Visibility = "Private"
)

// ChallengeType, kanalın challenge süresinin sabit olup olmadığını belirtir.
type ChallengeType string

const (
	ChallengeFixed   ChallengeType = "Fixed"
	ChallengeUnfixed ChallengeType = "Unfixed"
)

// Challenge, kanalın hedef/challenge metadata'sı.
type Challenge struct {
	Type         ChallengeType `bson:"type" json:"type"`
	Goal         string        `bson:"goal" json:"goal"`
	DurationDays int           `bson:"duration_days" json:"duration_days"`
}

// Followers, kanalın zaman bucket'lı takipçi sayaçları.
//
// Invariant: bucket dizileri append-only'dir, en yeni örnek her zaman
// sondadır. Current, subscribe/unsubscribe ile artar/azalır; bucket'lara
// yeni örnek ekleyen periyodik job bu servisin dışındadır.
type Followers struct {
	Current     int64     `bson:"current" json:"current"`
	Monthly     []int64   `bson:"monthly" json:"monthly"`
	Yearly      []int64   `bson:"yearly" json:"yearly"`
	TwoWeek     []int64   `bson:"two_week" json:"two_week"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}

// Channel, bir içerik kanalını temsil eder.
//
// Kanal author'a aittir; contributors sadece post yazabilir, kanal
// metadata'sını değiştiremez.
type Channel struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Author       Author               `bson:"author" json:"author"`
	Name         string               `bson:"name" json:"name"`
	Description  string               `bson:"description" json:"description"`
	Visibility   Visibility           `bson:"visibility" json:"visibility"`
	Categories   []string             `bson:"categories" json:"categories"`
	Challenge    Challenge            `bson:"challenge" json:"challenge"`
	Contributors []primitive.ObjectID `bson:"contributors" json:"contributors"`
	Followers    Followers            `bson:"followers" json:"followers"`
	BaseImage    *string              `bson:"base_image,omitempty" json:"base_image,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
}

// ChannelWithLatestPost, ranking sonuçlarında bir kanalı son postuyla
// birlikte taşır. Postu olmayan kanallar sonuç sayfasına hiç girmez —
// LatestPost bu yüzden pointer değil.
type ChannelWithLatestPost struct {
	Channel    Channel `json:"channel"`
	LatestPost Post    `json:"latest_post"`
}

// ChannelSubscription, kullanıcının kanal listesi view'ında bir satır:
// kanal + link bilgisi + okunmamış post sayısı.
type ChannelSubscription struct {
	Channel     Channel    `json:"channel"`
	IsOwner     bool       `json:"is_owner"`
	SubscribedAt *time.Time `json:"subscribed_at,omitempty"`
	UnreadCount int64      `json:"unread_count"`
}
