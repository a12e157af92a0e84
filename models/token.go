package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token'ın payload'ı.
//
// Token'ı bu servis üretmez — identity collaborator imzalar, biz doğrularız.
// Claims'te user id + minimal profil alanları taşınır, böylece çoğu istek
// için users koleksiyonuna gitmeden Author oluşturulabilir.
//
// Bu struct models paketinde tanımlanır çünkü birden fazla katman
// (services, ws, middleware) tarafından kullanılır — circular dependency
// olmadan her katman models'e bağımlı olabilir.
type TokenClaims struct {
	UserID    string  `json:"user_id"`
	Nickname  string  `json:"nickname"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}
