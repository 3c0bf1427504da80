package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const SessionTTL = 30 * 24 * time.Hour

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies HS256 session tokens.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), ttl: SessionTTL}
}

func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

func (s *SessionSigner) Sign(userID uint) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates the signature and expiry and returns the embedded user id.
func (s *SessionSigner) Verify(tokenString string) (uint, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}

	if !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid session token")
	}
	return claims.UserID, nil
}
