package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateAccessToken issues the short-lived token used on every API call.
func GenerateAccessToken(id primitive.ObjectID) (string, error) {
	return generateToken(id, TokenTypeAccess, 24*time.Hour)
}

// GenerateRefreshToken issues the longer-lived refresh token.
func GenerateRefreshToken(id primitive.ObjectID) (string, error) {
	return generateToken(id, TokenTypeRefresh, 7*24*time.Hour)
}

func generateToken(id primitive.ObjectID, tokenType string, ttl time.Duration) (string, error) {
	claims := &Claims{
		ID:   id.Hex(),
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// VerifyAccessToken parses tokenString and rejects anything that is not a
// valid access-type token.
func VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != TokenTypeAccess {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}
