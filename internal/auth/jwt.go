package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried inside the access token. RoleName travels with the
// token so the access gate does not need a database round trip.
type Claims struct {
	UserID     int    `json:"userId"`
	Username   string `json:"username"`
	RoleName   string `json:"roleName"`
	AccessType string `json:"accessType"`
	jwt.RegisteredClaims
}

func secretBytes(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return []byte(secret), nil
}

// GenerateAccessToken mints a signed HS256 token valid for ttl.
func GenerateAccessToken(secret string, userID int, username, roleName, accessType string, ttl time.Duration) (string, error) {
	key, err := secretBytes(secret)
	if err != nil {
		return "", err
	}

	claims := Claims{
		UserID:     userID,
		Username:   username,
		RoleName:   roleName,
		AccessType: accessType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateAccessToken parses and verifies a token string.
func ValidateAccessToken(secret, tokenString string) (*Claims, error) {
	key, err := secretBytes(secret)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken returns a 256-bit random hex string.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
