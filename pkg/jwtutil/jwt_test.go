package jwtutil

import (
	"strings"
	"testing"

	"github.com/suteetoe/saasbase/pkg/config"
)

const testSigningKey = "test-signing-key"

func newTestUtil(expirationHours int) *JWTUtil {
	return NewJWTUtil(&config.JWTConfig{
		SigningKey:      testSigningKey,
		ExpirationHours: expirationHours,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	j := newTestUtil(1)

	token, err := j.GenerateToken("owner@acme.test", 42, "acme", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := j.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.Email != "owner@acme.test" {
		t.Errorf("expected email owner@acme.test, got %s", claims.Email)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.TenantID != "acme" {
		t.Errorf("expected tenant claim acme, got %s", claims.TenantID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
}

func TestValidateTokenFailures(t *testing.T) {
	j := newTestUtil(1)

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTUtil(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
		token, err := other.GenerateToken("owner@acme.test", 42, "acme", "user")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := j.ValidateToken(token); err == nil {
			t.Error("token signed with a different key should not validate")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestUtil(-1)
		token, err := expired.GenerateToken("owner@acme.test", 42, "acme", "user")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := j.ValidateToken(token); err == nil {
			t.Error("expired token should not validate")
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := j.GenerateToken("owner@acme.test", 42, "acme", "user")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		if _, err := j.ValidateToken(tampered); err == nil {
			t.Error("tampered token should not validate")
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		if _, err := j.ValidateToken("not-a-token"); err == nil {
			t.Error("malformed token should not validate")
		}
	})
}
