package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	token, expiresAt, err := GenerateToken("secret", 42, "dev@example.com", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expiry should be in the future")
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Email != "dev@example.com" {
		t.Errorf("email = %s", claims.Email)
	}
}

func TestParseWithWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret", 42, "dev@example.com", 1)
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
}
