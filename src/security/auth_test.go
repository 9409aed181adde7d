package security

import (
	"testing"
	"time"

	"github.com/Alltrendsfy/zenith-sub000/src/config"
)

func setupTestConfig() {
	config.Cfg = &config.AppConfig{
		JWTSecret:         "test-secret-at-least-32-bytes-long!!",
		AccessTokenExpiry: 15 * time.Minute,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setupTestConfig()
	svc := NewAuthService(config.Cfg.JWTSecret)

	token, err := svc.GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	sub, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if sub != "42" {
		t.Errorf("sub = %q, want %q", sub, "42")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	setupTestConfig()

	token, err := NewAuthService(config.Cfg.JWTSecret).GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if _, err := NewAuthService("another-secret-also-32-bytes-long!!!").ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with a different secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	setupTestConfig()
	svc := NewAuthService(config.Cfg.JWTSecret)

	for _, bad := range []string{"", "not.a.token", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := svc.ValidateToken(bad); err == nil {
			t.Errorf("ValidateToken(%q) accepted invalid input", bad)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := NewAuthService("irrelevant")

	hash, err := svc.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("HashPassword() returned the plaintext")
	}
	if err := svc.CompareHashAndPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("CompareHashAndPassword() rejected the right password: %v", err)
	}
	if err := svc.CompareHashAndPassword(hash, "wrong password"); err == nil {
		t.Error("CompareHashAndPassword() accepted the wrong password")
	}
}
