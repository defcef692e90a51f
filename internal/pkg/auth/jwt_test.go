package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(time.Hour)

	token, expiresIn, err := svc.GenerateToken(5, "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d", expiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 5 || claims.Email != "ana@example.com" {
		t.Fatalf("claims: %+v", claims)
	}
	if claims.Issuer != "test" {
		t.Fatalf("issuer %q", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.GenerateToken(5, "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, _, err := newTestService(time.Hour).GenerateToken(5, "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	other := NewJWTService(JWTConfig{SecretKey: "different", AccessTokenExp: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer prefix", "Bearer abc", "abc", false},
		{"bare token", "abc", "abc", false},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q", got)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret123" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "secret123") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
