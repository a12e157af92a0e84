package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
)

// AuthService, identity collaborator'ın bu servisteki yüzeyi:
// bearer token doğrular, claims döner. Token üretme/yenileme burada yok.
type AuthService interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

type authService struct {
	jwtSecret string
}

// NewAuthService, constructor — interface döner.
func NewAuthService(jwtSecret string) AuthService {
	return &authService{jwtSecret: jwtSecret}
}

// ValidateAccessToken, token imzasını ve süresini doğrular.
// Her türlü doğrulama hatası pkg.ErrUnauthorized'a map'lenir —
// çağırana imza mı bozuk süre mi dolmuş detayı sızdırılmaz.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Sadece HMAC ailesini kabul et — alg confusion saldırısını engeller.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid access token", pkg.ErrUnauthorized)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: token missing user id", pkg.ErrUnauthorized)
	}

	return claims, nil
}
