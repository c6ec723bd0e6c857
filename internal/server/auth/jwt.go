// Package auth issues and verifies the stateless session tokens of the
// CipherSafe server. Tokens are HS256 JWTs signed with a server-held secret;
// expiry is the only invalidation mechanism, no revocation list exists.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claim set and adds the user identity the
// token was minted for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GenerateToken mints a signed token for the given identity with the given
// validity window. It has no side effects beyond token construction.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetIdentityFromToken checks signature integrity and expiry and returns the
// embedded identity. Expired tokens map to common.ErrTokenExpired, anything
// else that fails verification maps to common.ErrInvalidToken.
func GetIdentityFromToken(tokenString string, secretKey []byte) (string, string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", common.ErrTokenExpired
		}
		return "", "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", "", common.ErrInvalidToken
	}

	return claims.UserID, claims.Email, nil
}
