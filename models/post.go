package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostEditState, postun düzenlenebilirlik durumu.
//
// Bir post yapısal olarak en fazla BİR kez düzenlenebilir. Bu iki durumlu
// bir ratchet'tir: Editable → Locked geçişi tek yönlüdür, Locked terminal
// durumdur. Bool flag yerine açık enum — terminal geçiş kendini belgeler.
type PostEditState string

const (
	PostEditable PostEditState = "Editable"
	PostLocked   PostEditState = "Locked"
)

// Post, bir kanala yazılmış içeriği temsil eder.
type Post struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	Author              Author             `bson:"author" json:"author"`
	ChannelID           primitive.ObjectID `bson:"channel_id" json:"channel_id"`
	Body                string             `bson:"body" json:"body"`
	Images              []string           `bson:"images,omitempty" json:"images,omitempty"`
	WrittenChallengeDay int                `bson:"written_challenge_day" json:"written_challenge_day"`
	Likes               int64              `bson:"likes" json:"likes"`
	Dislikes            int64              `bson:"dislikes" json:"dislikes"`
	EditState           PostEditState      `bson:"edit_state" json:"edit_state"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// UpdatePostRequest, tek seferlik post düzenleme isteği.
type UpdatePostRequest struct {
	Body   string   `json:"body" validate:"required,max=8192"`
	Images []string `json:"images" validate:"omitempty,dive,uri"`
}

// MarkReadRequest, bir veya birden fazla postu okundu işaretleme isteği.
// ID'ler hex string olarak gelir — handler ObjectID'ye parse eder.
type MarkReadRequest struct {
	PostIDs []string `json:"post_ids" validate:"required,min=1,dive,len=24,hexadecimal"`
}
