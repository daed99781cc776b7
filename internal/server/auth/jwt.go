// Package auth mints and parses the HS256 access tokens handed to clients.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity id next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	IdentityID string `json:"iid"`
}

// GenerateToken returns a signed token for identityID valid for validity.
func GenerateToken(identityID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		IdentityID: identityID,
	})
	return token.SignedString(secretKey)
}

// IdentityFromToken validates tokenString and returns its identity id. An
// expired token yields common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func IdentityFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.IdentityID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.IdentityID, nil
}
