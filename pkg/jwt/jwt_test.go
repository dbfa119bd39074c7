package jwt

import (
	"testing"
	"time"

	"gamecatalog/backend/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func withSecret(t *testing.T, s string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: s}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	id, err := ParseToken(token)
	if err != nil || id != 42 {
		t.Fatalf("ParseToken() = %d, %v", id, err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	withSecret(t, "one")
	token, _ := GenerateToken(1)

	config.AppConfig.JWTSecret = "two"
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	withSecret(t, "s")
	claims := gojwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s"))

	if _, err := ParseToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestMissingSecret(t *testing.T) {
	withSecret(t, "")
	if _, err := GenerateToken(1); err == nil {
		t.Error("expected error without secret")
	}
}
