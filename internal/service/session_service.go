package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService emite y valida tokens de sesión firmados.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type SessionClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrSessionInvalid = errors.New("session token invalid")
	ErrSessionExpired = errors.New("session token expired")
)

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "tunenote",
	}
}

// TTL devuelve la vigencia configurada para un token de sesión.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token de sesión para el usuario dado.
func (s *SessionService) Issue(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrSessionInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:    userID,
		TokenType: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma, emisor, tipo y expiración; falla cerrado.
func (s *SessionService) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrSessionInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrSessionInvalid
	}
	if claims.TokenType != "session" {
		return "", ErrSessionInvalid
	}
	if !s.isValidClaims(claims) {
		return "", ErrSessionInvalid
	}
	return claims.UserID, nil
}

func (s *SessionService) isValidClaims(claims SessionClaims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
