// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Auth → Handler
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/handlers"
	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
	"github.com/akinalp/merume/services"
)

// IdentityScope, handler'ın auth middleware'dan ne kadar kimlik bilgisi
// istediğini söyler. Scope büyüdükçe maliyet artar: FullProfile her
// request'te DB okuması yapar, diğer ikisi sadece token claims'ini kullanır.
type IdentityScope int

const (
	// ScopeMinimalID: sadece doğrulanmış user id. DB'ye gidilmez.
	ScopeMinimalID IdentityScope = iota

	// ScopeAuthorProfile: id + nickname + username + avatar, token
	// claims'inden türetilir. DB'ye gidilmez — claims bayatsa (kullanıcı
	// avatarını yeni değiştirdiyse) bir token ömrü kadar eski kalabilir.
	ScopeAuthorProfile

	// ScopeFullProfile: kullanıcının güncel dokümanı DB'den okunur.
	// Token geçerli ama kullanıcı silinmişse request 401 ile düşer.
	ScopeFullProfile
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Middleware nasıl çalışır?
// 1. "Authorization" header'ını oku
// 2. "Bearer " prefix'ini kaldır → raw token string
// 3. AuthService.ValidateAccessToken() ile doğrula
// 4. İstenen scope'a göre kimliği hazırla → context'e ekle → next handler'ı çağır
// 5. Geçersizse → 401 döndür, next ÇAĞIRILMAZ
func (m *AuthMiddleware) Require(scope IdentityScope, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Header'dan token'ı al
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		// 2. "Bearer " prefix'ini kaldır
		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// 3. Token'ı doğrula
		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		identity, err := m.buildIdentity(r.Context(), claims, scope)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}

		// 4. Context'e kimliği ekle
		// context.WithValue: mevcut context'e key-value ekler.
		// Downstream handler'lar handlers.IdentityFromContext ile erişir.
		ctx := context.WithValue(r.Context(), handlers.IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// buildIdentity, scope'a göre kimliği doldurur.
func (m *AuthMiddleware) buildIdentity(ctx context.Context, claims *models.TokenClaims, scope IdentityScope) (*handlers.Identity, error) {
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, err
	}

	identity := &handlers.Identity{UserID: userID}

	switch scope {
	case ScopeMinimalID:
		// id yeterli, başka bir şey taşınmaz.

	case ScopeAuthorProfile:
		identity.Author = &models.Author{
			ID:        userID,
			Nickname:  claims.Nickname,
			Username:  claims.Username,
			AvatarURL: claims.AvatarURL,
		}

	case ScopeFullProfile:
		// Token geçerli ama kullanıcı silinmiş olabilir — DB'den doğrula.
		user, err := m.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		identity.User = user
		author := user.ToAuthor()
		identity.Author = &author
	}

	return identity, nil
}
