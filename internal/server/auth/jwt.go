// Package auth mints and parses the session artifact issued after a
// successful login: an HS256 JWT carrying the username and role claims.
// How the hosting layer transports it (cookie, header) is not decided here.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"siams/internal/server/models"
	"siams/internal/shared"
)

// Claims carries the standard registered claims plus the two session claims
// the application relies on.
type Claims struct {
	jwt.RegisteredClaims
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// GenerateToken issues a signed session token for the given identity.
func GenerateToken(username string, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name: username,
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the signature and expiry of tokenString and returns
// its claims. Any failure maps to shared.ErrorInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, shared.ErrorInvalidToken
	}

	if !token.Valid {
		return nil, shared.ErrorInvalidToken
	}

	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, shared.ErrorInvalidToken
	}

	return claims, nil
}
