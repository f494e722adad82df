package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims
type Claims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	jwt.StandardClaims
}

// TokenManager issues and verifies HS256 session tokens
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenManager creates a TokenManager. secret must not be empty.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{key: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT generates a JWT token for a user
func (tm *TokenManager) GenerateJWT(userID, email, userType string) (string, error) {
	now := tm.now()
	claims := &Claims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tm.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseJWT verifies the signature and expiry and returns the claims
func (tm *TokenManager) ParseJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
