package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gamecatalog/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an admin session lasts.
const TokenTTL = 7 * 24 * time.Hour

func secret() ([]byte, error) {
	if config.AppConfig == nil || config.AppConfig.JWTSecret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	return []byte(config.AppConfig.JWTSecret), nil
}

// GenerateToken creates a new JWT for a given user ID.
func GenerateToken(userID uint) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseToken validates tokenString and returns the user ID it was issued for.
func ParseToken(tokenString string) (uint, error) {
	key, err := secret()
	if err != nil {
		return 0, err
	}

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return uint(id), nil
}
