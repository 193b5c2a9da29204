package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload we sign into every access token.
type Claims struct {
	UserID string `json:"user_id"`
	RoleID uint   `json:"role_id"`
	jwt.RegisteredClaims
}

// GenerateToken membuat JWT string yang berisi User ID dan Role
func GenerateToken(secret string, ttl time.Duration, userID string, roleID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies signature, algorithm and expiry, then returns the claims.
func ValidateToken(secret, encodedToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(encodedToken, claims, func(token *jwt.Token) (interface{}, error) {
		// Validasi algoritma enkripsi (harus HMAC)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
