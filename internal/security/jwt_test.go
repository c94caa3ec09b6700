package security

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTSignAndParse(t *testing.T) {
	mgr := NewJWTManager(testSecret, "docuchat-auth", "docuchat-api", 7*24*time.Hour)

	token, expiresAt, err := mgr.Sign("user-123")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 7*24*time.Hour-time.Minute {
		t.Fatalf("expected roughly 7d validity, got %v", remaining)
	}

	claims, err := mgr.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject = %q, want user-123", claims.Subject)
	}
}

func TestJWTParseRejectsTampering(t *testing.T) {
	mgr := NewJWTManager(testSecret, "docuchat-auth", "docuchat-api", time.Hour)
	token, _, err := mgr.Sign("user-123")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("ffffffffffffffffffffffffffffffff", "docuchat-auth", "docuchat-api", time.Hour)
		if _, err := other.Parse(token); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("mangled payload", func(t *testing.T) {
		parts := strings.SplitN(token, ".", 3)
		mangled := parts[0] + ".eyJzdWIiOiJvdGhlciJ9." + parts[2]
		if _, err := mgr.Parse(mangled); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager(testSecret, "someone-else", "docuchat-api", time.Hour)
		otherToken, _, _ := other.Sign("user-123")
		if _, err := mgr.Parse(otherToken); err == nil {
			t.Fatal("expected issuer error")
		}
	})
}

func TestJWTParseRejectsExpired(t *testing.T) {
	mgr := NewJWTManager(testSecret, "docuchat-auth", "docuchat-api", -time.Minute)
	token, _, err := mgr.Sign("user-123")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := mgr.Parse(token); err == nil {
		t.Fatal("expected expiry error")
	}
}
