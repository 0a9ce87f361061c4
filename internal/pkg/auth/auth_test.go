package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yigit/sims/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !IsHashed(hash) {
		t.Fatalf("hash %q not recognised as bcrypt", hash)
	}
	if !h.Check(hash, "pw1") {
		t.Fatal("correct password rejected")
	}
	if h.Check(hash, "pw2") {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordHasherLegacyPlaintext(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if !h.Check("admin123", "admin123") {
		t.Fatal("plain text row rejected")
	}
	if h.Check("admin123", "admin124") {
		t.Fatal("plain text mismatch accepted")
	}
}

func newTestJWT(ttl time.Duration) *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: ttl, TokenIssuer: "sims-test"})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWT(time.Minute)
	token, expiresIn, err := svc.GenerateAccessToken(models.Session{Username: "alice1", Role: models.RoleStudent, StudentID: 120})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if expiresIn != 60 {
		t.Fatalf("expiresIn = %d", expiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(token)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims: %v", err)
	}
	if claims.Username != "alice1" || claims.Role != models.RoleStudent || claims.StudentID != 120 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTRejects(t *testing.T) {
	svc := newTestJWT(time.Minute)

	expired, _, err := newTestJWT(-time.Minute).GenerateAccessToken(models.Session{Username: "a", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := svc.ValidateToken(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expired: err = %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "sims-test"})
	forged, _, _ := other.GenerateAccessToken(models.Session{Username: "a", Role: models.RoleAdmin})
	if _, err := svc.ValidateToken(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("forged: err = %v", err)
	}

	unlinked, _, _ := svc.GenerateAccessToken(models.Session{Username: "bob", Role: models.RoleStudent})
	if _, err := svc.ValidateAndExtractClaims(unlinked); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unlinked student: err = %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, err := ExtractBearerToken(""); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("empty header: %v", err)
	}
	tok, err := ExtractBearerToken("Bearer abc")
	if err != nil || tok != "abc" {
		t.Fatalf("got %q, %v", tok, err)
	}
}
