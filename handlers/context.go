// Package handlers, HTTP endpoint'lerini barındırır.
//
// Her handler bir struct'tır, bağımlılıklarını (service/repo) constructor ile
// alır. Request parsing + validation burada, iş mantığı service katmanında.
package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// contextKey, context.WithValue için özel tip.
// String yerine özel tip kullanmak, başka paketlerin aynı key ile
// çakışmasını engeller.
type contextKey string

// IdentityContextKey, auth middleware'ın context'e koyduğu kimliğin anahtarı.
const IdentityContextKey contextKey = "identity"

// Identity, auth middleware'ın doğruladığı kimlik.
//
// Hangi alanların dolu olduğu middleware'a verilen scope'a bağlıdır:
// UserID her zaman dolu, Author sadece AuthorProfile ve üstünde,
// User sadece FullProfile'da. Handler'lar ihtiyaçlarından fazlasını
// scope olarak istememeli — FullProfile her request'te bir DB okuması demek.
type Identity struct {
	UserID primitive.ObjectID
	Author *models.Author
	User   *models.User
}

// IdentityFromContext, request context'inden kimliği çıkarır.
// Middleware zincirinden geçmemiş bir request'te ikinci dönüş değeri false'tur.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok
}
