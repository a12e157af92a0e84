package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserChannel, bir kullanıcı ile bir kanal arasındaki linki temsil eder.
//
// Invariant: (user_id, channel_id) çifti başına en fazla bir link vardır —
// unique compound index ile garanti edilir. Owner linkinde is_owner=true
// ve subscribed_at nil'dir; subscriber linkinde tersi.
type UserChannel struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	ChannelID    primitive.ObjectID `bson:"channel_id" json:"channel_id"`
	IsOwner      bool               `bson:"is_owner" json:"is_owner"`
	SubscribedAt *time.Time         `bson:"subscribed_at,omitempty" json:"subscribed_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// IsSubscriber, linkin aktif bir abonelik olup olmadığını döner.
// Owner linki abonelik sayılmaz — subscribed_at alanı yoktur.
func (uc *UserChannel) IsSubscriber() bool {
	return uc != nil && uc.SubscribedAt != nil
}
